package jwt

import "testing"

func TestCreateAndExtract(t *testing.T) {
	token, err := CreateToken("user-42", "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	userID, err := ExtractUserIDFromToken(token, "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if userID != "user-42" {
		t.Fatalf("Expected user-42, got %q", userID)
	}
}

func TestExtract_WrongSecret(t *testing.T) {
	token, err := CreateToken("user-42", "secret")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := ExtractUserIDFromToken(token, "other-secret"); err == nil {
		t.Fatal("Expected error for wrong secret")
	}
}

func TestExtract_Garbage(t *testing.T) {
	if _, err := ExtractUserIDFromToken("not.a.token", "secret"); err == nil {
		t.Fatal("Expected error for malformed token")
	}
}
