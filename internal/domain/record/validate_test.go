package record

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"clinadm/internal/shared/errors"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		rec     Record
		wantErr string
	}{
		{
			name:   "complete new patient passes",
			schema: Patients,
			rec:    Record{"first_name": "Ana", "last_name": "Doe", "personal_number": "12345"},
		},
		{
			name:    "missing required field fails",
			schema:  Patients,
			rec:     Record{"first_name": "Ana"},
			wantErr: "last_name is required",
		},
		{
			name:    "bad email fails",
			schema:  Users,
			rec:     Record{"first_name": "A", "last_name": "B", "email": "nope", "phone_number": "1", "user_name": "ab", "password": "pw", "role": "staff"},
			wantErr: "email is not a valid email address",
		},
		{
			name:   "password not required when editing",
			schema: Users,
			rec:    Record{"id": float64(7), "first_name": "A", "last_name": "B", "email": "a@b.co", "phone_number": "1", "user_name": "ab", "password": "", "role": "staff"},
		},
		{
			name:    "password required when creating",
			schema:  Users,
			rec:     Record{"first_name": "A", "last_name": "B", "email": "a@b.co", "phone_number": "1", "user_name": "ab", "password": "", "role": "staff"},
			wantErr: "password is required",
		},
		{
			name:    "unparseable number fails",
			schema:  Services,
			rec:     Record{"name": "X-ray", "price": "lots"},
			wantErr: "price must be a number",
		},
		{
			name:   "blank optional number passes",
			schema: Services,
			rec:    Record{"name": "X-ray", "price": ""},
		},
		{
			name:   "read-only token not required on edit",
			schema: Invitations,
			rec:    Record{"id": float64(2), "email": "a@b.co", "token": ""},
		},
		{
			name:   "invitation create needs only email",
			schema: Invitations,
			rec:    Record{"email": "a@b.co"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.schema, tt.rec)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
