package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignupRequest_Validate(t *testing.T) {
	req := require.New(t)

	valid := func() *SignupRequest {
		return &SignupRequest{
			FullName: "Alice Wonder",
			Email:    "alice@test.com",
			Password: "supersecret",
			Bio:      "merhaba",
		}
	}

	req.NoError(valid().Validate())

	// Email normalize edilir
	r := valid()
	r.Email = "  ALICE@Test.COM "
	req.NoError(r.Validate())
	req.Equal("alice@test.com", r.Email)

	r = valid()
	r.FullName = "A"
	req.Error(r.Validate(), "isim çok kısa")

	r = valid()
	r.FullName = strings.Repeat("x", 65)
	req.Error(r.Validate(), "isim çok uzun")

	r = valid()
	r.Email = "not-an-email"
	req.Error(r.Validate())

	r = valid()
	r.Password = "short"
	req.Error(r.Validate(), "şifre en az 8 karakter")

	r = valid()
	r.Bio = strings.Repeat("x", 301)
	req.Error(r.Validate(), "bio çok uzun")
}

func TestLoginRequest_Validate(t *testing.T) {
	req := require.New(t)

	r := &LoginRequest{Email: "Alice@Test.com", Password: "secret"}
	req.NoError(r.Validate())
	req.Equal("alice@test.com", r.Email)

	req.Error((&LoginRequest{Password: "secret"}).Validate())
	req.Error((&LoginRequest{Email: "alice@test.com"}).Validate())
}

func TestUpdateProfileRequest_Validate(t *testing.T) {
	req := require.New(t)

	name := "Alice W"
	r := &UpdateProfileRequest{FullName: &name}
	req.NoError(r.Validate())

	// Hiçbir field verilmemiş
	req.Error((&UpdateProfileRequest{}).Validate())

	short := "A"
	req.Error((&UpdateProfileRequest{FullName: &short}).Validate())

	longBio := strings.Repeat("x", 301)
	req.Error((&UpdateProfileRequest{Bio: &longBio}).Validate())
}

func TestUser_PasswordNeverSerialized(t *testing.T) {
	req := require.New(t)

	u := User{ID: "u1", Email: "alice@test.com", Password: "$2a$12$hash"}
	data, err := json.Marshal(u)
	req.NoError(err)

	raw := string(data)
	req.NotContains(raw, "hash")
	req.NotContains(raw, "password")
	req.Contains(raw, `"_id":"u1"`)
}
