package admin

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigureFieldsPerPage(t *testing.T) {
	cases := []struct {
		page     PageName
		kinds    []Kind
		required []bool
	}{
		{page: PageIndex, kinds: []Kind{KindText, KindLink}, required: []bool{true, false}},
		{page: PageDetail, kinds: []Kind{KindText, KindLink}, required: []bool{true, false}},
		{page: PageNew, kinds: []Kind{KindText, KindUpload}, required: []bool{true, true}},
		{page: PageEdit, kinds: []Kind{KindText, KindUpload}, required: []bool{true, false}},
	}

	for _, tc := range cases {
		t.Run(string(tc.page), func(t *testing.T) {
			descriptors := Describe(ConfigureFields(tc.page))
			require.Len(t, descriptors, len(tc.kinds))
			for i, d := range descriptors {
				assert.Equal(t, tc.kinds[i], d.Kind)
				assert.Equal(t, tc.required[i], d.Required)
			}
			assert.Equal(t, "label", descriptors[0].Property)
			assert.Equal(t, "Nom du fichier", descriptors[0].Label)
		})
	}
}

func TestConfigureFieldsLinkTemplate(t *testing.T) {
	fields := ConfigureFields(PageDetail)

	link, ok := fields[1].(LinkField)
	require.True(t, ok)
	assert.Equal(t, "filePath", link.Name())
	assert.Equal(t, "Fichier", link.Label)
	assert.Equal(t, DocumentLinkTemplate, link.Template)
}

func TestConfigureFieldsIsPure(t *testing.T) {
	for _, page := range []PageName{PageIndex, PageDetail, PageNew, PageEdit} {
		assert.Equal(t, ConfigureFields(page), ConfigureFields(page))
	}
}

func TestParsePageName(t *testing.T) {
	page, err := ParsePageName(" Edit ")
	require.NoError(t, err)
	assert.Equal(t, PageEdit, page)

	_, err = ParsePageName("delete")
	assert.True(t, errors.Is(err, ErrUnknownPage))
}
