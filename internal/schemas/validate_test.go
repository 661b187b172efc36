package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileJSONValid(t *testing.T) {
	doc := `{
		"name": "João Silva",
		"email": "joao@x.com",
		"skills": ["JavaScript", "React"],
		"experience": [{"title": "Developer", "company": "Acme", "duration": "2020-2023"}],
		"education": [{"degree": "BSc Computer Science", "institution": "USP", "year": "2019"}]
	}`

	assert.NoError(t, ValidateProfileJSON(doc))
}

func TestValidateProfileJSONMinimal(t *testing.T) {
	// All fields optional at the top level; partial extraction is fine.
	assert.NoError(t, ValidateProfileJSON(`{}`))
	assert.NoError(t, ValidateProfileJSON(`{"name": "Ana"}`))
}

func TestValidateProfileJSONWrongTypes(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"Skills as string", `{"skills": "Go, React"}`},
		{"Experience missing company", `{"experience": [{"title": "Dev"}]}`},
		{"Negative years", `{"experience": [{"title": "Dev", "company": "A", "years_in_role": -2}]}`},
		{"Name as number", `{"name": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileJSON(tt.doc)
			require.Error(t, err)

			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
			assert.NotEmpty(t, ve.Errors)
		})
	}
}

func TestValidateProfileJSONMalformed(t *testing.T) {
	assert.Error(t, ValidateProfileJSON(`{"name": `))
}
