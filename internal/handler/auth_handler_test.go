package handler

import (
	"net/http"
	"testing"

	"teampulse-api/internal/model"
	"teampulse-api/pkg/jwtutil"

	"golang.org/x/crypto/bcrypt"
)

func TestRegisterIssuesResolvableToken(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"ann@example.com","password":"s3cret","username":"ann"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	decodeBody(t, rec, &resp)
	if resp.TokenType != "bearer" {
		t.Fatalf("unexpected token type: %s", resp.TokenType)
	}

	// The token subject must be the stored user.
	userID, err := jwtutil.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	var user model.User
	if err := db.Where("email = ?", "ann@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if userID != user.ID {
		t.Fatalf("token subject %s does not match user %s", userID, user.ID)
	}
	if user.Role != model.RoleTeamlead {
		t.Fatalf("expected default role teamlead, got %s", user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	c1, rec1 := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"dup@example.com","password":"pw","username":"first"}`)
	if err := h.Register(c1); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec1.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec1.Code)
	}

	c2, rec2 := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"dup@example.com","password":"pw","username":"second"}`)
	if err := h.Register(c2); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec2.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d body=%s", rec2.Code, rec2.Body.String())
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("duplicate registration left %d users", count)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"no-pass@example.com","username":"x"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterOwnerCreatesTenant(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	c, rec := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"boss@example.com","password":"pw","username":"boss","role":"owner","company_name":"Acme"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SubscriptionTier *string `json:"subscription_tier"`
	}
	decodeBody(t, rec, &resp)
	if resp.SubscriptionTier == nil || *resp.SubscriptionTier != "free" {
		t.Fatalf("expected free tier in response, got %v", resp.SubscriptionTier)
	}

	var client model.Client
	if err := db.Where("name = ?", "Acme").First(&client).Error; err != nil {
		t.Fatalf("tenant not created: %v", err)
	}
	var user model.User
	if err := db.Where("email = ?", "boss@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if client.OwnerID != user.ID {
		t.Fatal("tenant not owned by the registering user")
	}
	if user.ClientID == nil || *user.ClientID != client.ID {
		t.Fatal("user not attached to the new tenant")
	}
	if client.MaxEmployees != 5 {
		t.Fatalf("expected default max employees 5, got %d", client.MaxEmployees)
	}
}

func TestRegisterOwnerRollsBackOnTenantFailure(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	// With the clients table gone the tenant insert fails mid-registration;
	// the user row created before it must not survive.
	if err := db.Migrator().DropTable(&model.Client{}); err != nil {
		t.Fatalf("drop clients table: %v", err)
	}

	c, rec := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"boss@example.com","password":"pw","username":"boss","role":"owner","company_name":"Acme"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d body=%s", rec.Code, rec.Body.String())
	}

	var count int64
	db.Model(&model.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed registration left %d users", count)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	cReg, recReg := newJSONContext(t, http.MethodPost, "/api/auth/register",
		`{"email":"lee@example.com","password":"correct-horse","username":"lee"}`)
	if err := h.Register(cReg); err != nil {
		t.Fatalf("register: %v", err)
	}
	if recReg.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", recReg.Code)
	}

	// Wrong password and unknown email must be indistinguishable.
	cBad, recBad := newJSONContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"lee@example.com","password":"wrong"}`)
	if err := h.Login(cBad); err != nil {
		t.Fatalf("login: %v", err)
	}
	if recBad.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", recBad.Code)
	}

	cNone, recNone := newJSONContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"ghost@example.com","password":"wrong"}`)
	if err := h.Login(cNone); err != nil {
		t.Fatalf("login: %v", err)
	}
	if recNone.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", recNone.Code)
	}
	if recBad.Body.String() != recNone.Body.String() {
		t.Fatalf("401 bodies differ: %s vs %s", recBad.Body.String(), recNone.Body.String())
	}

	cOK, recOK := newJSONContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"lee@example.com","password":"correct-horse"}`)
	if err := h.Login(cOK); err != nil {
		t.Fatalf("login: %v", err)
	}
	if recOK.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", recOK.Code, recOK.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, recOK, &resp)
	if _, err := jwtutil.ValidateToken(resp.AccessToken); err != nil {
		t.Fatalf("login token invalid: %v", err)
	}
}

func TestLoginMemberSeesSubscriptionTier(t *testing.T) {
	db := setupTestDB(t)
	h := NewAuthHandler(db)

	owner := model.User{Username: "boss", Email: "boss@example.com", HashedPassword: "x", Role: model.RoleOwner}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	client := model.Client{Name: "Acme", OwnerID: owner.ID}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed tenant: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("member-pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	member := model.User{
		Username:       "member",
		Email:          "member@example.com",
		HashedPassword: string(hashed),
		ClientID:       &client.ID,
	}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}

	// A plain member is not the tenant's owner but still sees its plan.
	c, rec := newJSONContext(t, http.MethodPost, "/api/auth/login",
		`{"email":"member@example.com","password":"member-pass"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("login: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SubscriptionTier *string `json:"subscription_tier"`
	}
	decodeBody(t, rec, &resp)
	if resp.SubscriptionTier == nil || *resp.SubscriptionTier != "free" {
		t.Fatalf("expected free tier for tenant member, got %v", resp.SubscriptionTier)
	}
}
