package validate_test

import (
	"strings"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/passage/internal/identity/domain"
	"github.com/aussiebroadwan/passage/internal/identity/validate"
)

func doc(t *testing.T, raw string) any {
	t.Helper()
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	require.NoError(t, err)
	return v
}

func TestValidator(t *testing.T) {
	v, err := validate.New()
	require.NoError(t, err)

	tests := []struct {
		name   string
		schema string
		body   string
		fields []string
	}{
		{"register ok", validate.Register, `{"name":"Ana","email":"ana@example.com","password":"secret1"}`, nil},
		{"register missing", validate.Register, `{"email":"ana@example.com"}`, []string{"name", "password"}},
		{"register padded email", validate.Register, `{"name":"Ana","email":"  Ana@Example.COM ","password":"secret1"}`, nil},
		{"register display-name email", validate.Register, `{"name":"Ana","email":"Ana <ana@example.com>","password":"secret1"}`, []string{"email"}},
		{"register bad email", validate.Register, `{"name":"Ana","email":"nope","password":"secret1"}`, []string{"email"}},
		{"register short password", validate.Register, `{"name":"Ana","email":"a@x.com","password":"123"}`, []string{"password"}},
		{"register extra field", validate.Register, `{"name":"Ana","email":"a@x.com","password":"secret1","admin":true}`, []string{"admin"}},
		{"register wrong type", validate.Register, `{"name":1,"email":"a@x.com","password":"secret1"}`, []string{"name"}},
		{"login ok", validate.Login, `{"email":"a@x.com","password":"x"}`, nil},
		{"login missing password", validate.Login, `{"email":"a@x.com"}`, []string{"password"}},
		{"update ok", validate.UpdateUser, `{"email":"a@x.com","name":"B"}`, nil},
		{"update new email", validate.UpdateUser, `{"email":"a@x.com","new_email":"b@x.com"}`, nil},
		{"update padded emails", validate.UpdateUser, `{"email":" A@X.com","new_email":"B@x.com "}`, nil},
		{"update bad new email", validate.UpdateUser, `{"email":"a@x.com","new_email":"b"}`, []string{"new_email"}},
		{"update unknown field", validate.UpdateUser, `{"email":"a@x.com","password":"x"}`, []string{"password"}},
		{"delete ok", validate.DeleteUser, `{"email":"a@x.com"}`, nil},
		{"delete missing", validate.DeleteUser, `{}`, []string{"email"}},
		{"reset request ok", validate.ResetRequest, `{"email":"a@x.com"}`, nil},
		{"reset confirm missing", validate.ResetConfirm, `{}`, []string{"new_password"}},
		{"reset confirm short left to service", validate.ResetConfirm, `{"new_password":"12"}`, nil},
		{"not an object", validate.Login, `[]`, []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.schema, doc(t, tt.body))
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, domain.ErrValidation)
			verr, ok := err.(*domain.ValidationError)
			require.True(t, ok)

			var got []string
			for _, f := range verr.Fields {
				got = append(got, f.Field)
				require.NotEmpty(t, f.Message)
			}
			require.Equal(t, tt.fields, got)
		})
	}
}

func TestValidator_UnknownSchema(t *testing.T) {
	v, err := validate.New()
	require.NoError(t, err)

	err = v.Validate("nope", map[string]any{})
	require.Error(t, err)
	require.NotErrorIs(t, err, domain.ErrValidation)
}
