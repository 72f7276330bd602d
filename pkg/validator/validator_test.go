package validator

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string {
	return &s
}

func uint64Ptr(ui uint64) *uint64 {
	return &ui
}

type sampleForm struct {
	Name  *string  `json:"name,omitempty"`
	Count *uint64  `json:"count,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	Page  *uint64  `schema:"page,omitempty"`
}

func TestFormValidate(t *testing.T) {
	form := MustForm(map[string]Validator{
		"name":  &String{MinLen: 1, MaxLen: 10},
		"count": &UInt64{Optional: true, Max: uint64Ptr(100)},
		"tags":  &Slice{Optional: true, Validator: &String{MinLen: 1}},
		"page":  &UInt64{Optional: true},
	})

	tests := []struct {
		name    string
		req     *sampleForm
		wantErr bool
	}{
		{
			name: "valid",
			req:  &sampleForm{Name: strPtr("ok"), Count: uint64Ptr(5), Tags: []string{"a"}},
		},
		{
			name:    "missing required",
			req:     &sampleForm{},
			wantErr: true,
		},
		{
			name:    "too long",
			req:     &sampleForm{Name: strPtr("this name is far too long")},
			wantErr: true,
		},
		{
			name:    "count above max",
			req:     &sampleForm{Name: strPtr("ok"), Count: uint64Ptr(101)},
			wantErr: true,
		},
		{
			name:    "empty slice element",
			req:     &sampleForm{Name: strPtr("ok"), Tags: []string{"a", ""}},
			wantErr: true,
		},
		{
			name: "optional fields unset",
			req:  &sampleForm{Name: strPtr("ok")},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := form.Validate(tc.req)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFormValidateSchemaTagKey(t *testing.T) {
	form := MustForm(map[string]Validator{
		"page": &UInt64{},
	})

	assert.Error(t, form.Validate(&sampleForm{}))
	assert.NoError(t, form.Validate(&sampleForm{Page: uint64Ptr(2)}))
}

func TestStringUnsetZero(t *testing.T) {
	v := &String{Optional: true, UnsetZero: true, MinLen: 3}

	// empty counts as unset, not as a too-short value
	assert.NoError(t, v.Validate(""))
	assert.NoError(t, v.Validate(strPtr("")))
	assert.Error(t, v.Validate("ab"))
	assert.NoError(t, v.Validate("abc"))
}

func TestStringRegexAndFuncs(t *testing.T) {
	var (
		errNoVowel = errors.New("needs a vowel")
		v          = &String{
			Regex: regexp.MustCompile(`^[a-z]+$`),
			Validators: []StringFunc{
				func(s string) error {
					if !regexp.MustCompile(`[aeiou]`).MatchString(s) {
						return errNoVowel
					}
					return nil
				},
			},
		}
	)

	assert.NoError(t, v.Validate("hello"))
	assert.Error(t, v.Validate("HELLO"))
	assert.ErrorIs(t, v.Validate("xyz"), errNoVowel)
}

func TestMustFormPanicsOnEmpty(t *testing.T) {
	require.Panics(t, func() {
		MustForm(nil)
	})
}
