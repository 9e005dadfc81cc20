package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		apiKey   string
		wantErr  bool
	}{
		{
			name:     "hashes simple password",
			apiKey:   "apikey123abcdef",
			wantErr:  false,
		},
		{
			name:     "hashes complex password",
			apiKey:   "P@ssw0rd!2023#$%^&*()",
			wantErr:  false,
		},
		{
			name:     "hashes empty password",
			apiKey:   "",
			wantErr:  false,
		},
		{
			name:     "hashes long password within limit",
			apiKey:   strings.Repeat("a", 72), // bcrypt max is 72 bytes
			wantErr:  false,
		},
		{
			name:     "rejects password exceeding 72 bytes",
			apiKey:   strings.Repeat("a", 73),
			wantErr:  true,
		},
		{
			name:     "rejects very long password",
			apiKey:   strings.Repeat("a", 100),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashAPIKey(tt.apiKey)
			if (err != nil) != tt.wantErr {
				t.Errorf("HashAPIKey() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				// Verify hash is not empty
				if hash == "" {
					t.Error("HashAPIKey() returned empty hash")
				}

				// Verify hash is different from password
				if hash == tt.apiKey {
					t.Error("HashAPIKey() returned unhashed password")
				}

				// Verify hash starts with bcrypt prefix
				if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
					t.Error("HashAPIKey() returned invalid bcrypt hash")
				}

				// Verify hash can be validated with bcrypt
				err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.apiKey))
				if err != nil {
					t.Errorf("HashAPIKey() created invalid hash: %v", err)
				}
			}
		})
	}
}

func TestHashAPIKeyDifferentHashes(t *testing.T) {
	password := "samepassword"

	hash1, err1 := HashAPIKey(password)
	if err1 != nil {
		t.Fatalf("HashAPIKey() error = %v", err1)
	}

	hash2, err2 := HashAPIKey(password)
	if err2 != nil {
		t.Fatalf("HashAPIKey() error = %v", err2)
	}

	// Bcrypt should generate different hashes for the same password (salt)
	if hash1 == hash2 {
		t.Error("HashAPIKey() generated identical hashes for same password")
	}

	// But both should validate correctly
	if !CheckAPIKey(password, hash1) {
		t.Error("CheckAPIKey() failed for hash1")
	}
	if !CheckAPIKey(password, hash2) {
		t.Error("CheckAPIKey() failed for hash2")
	}
}

func TestCheckAPIKey(t *testing.T) {
	// Pre-generated hash for "testpassword"
	password := "testpassword"
	hash, _ := HashAPIKey(password)

	tests := []struct {
		name     string
		apiKey   string
		hash     string
		want     bool
	}{
		{
			name:     "validates correct password",
			apiKey:   password,
			hash:     hash,
			want:     true,
		},
		{
			name:     "rejects wrong password",
			apiKey:   "wrongpassword",
			hash:     hash,
			want:     false,
		},
		{
			name:     "rejects empty password",
			apiKey:   "",
			hash:     hash,
			want:     false,
		},
		{
			name:     "rejects invalid hash",
			apiKey:   password,
			hash:     "invalid-hash",
			want:     false,
		},
		{
			name:     "rejects empty hash",
			apiKey:   password,
			hash:     "",
			want:     false,
		},
		{
			name:     "case sensitive password check",
			apiKey:   "TestPassword",
			hash:     hash,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAPIKey(tt.apiKey, tt.hash)
			if got != tt.want {
				t.Errorf("CheckAPIKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckAPIKeyWithSpecialCharacters(t *testing.T) {
	specialPasswords := []string{
		"p@ssw0rd!",
		"密码123",        // Chinese characters
		"пароль456",     // Cyrillic characters
		"emoji🔐pass",   // Emoji
		"space pass",    // Space
		"tab\tpass",     // Tab
		"newline\npass", // Newline
	}

	for _, password := range specialPasswords {
		t.Run(password, func(t *testing.T) {
			hash, err := HashAPIKey(password)
			if err != nil {
				t.Fatalf("HashAPIKey() error = %v", err)
			}

			if !CheckAPIKey(password, hash) {
				t.Error("CheckAPIKey() failed for special password")
			}

			// Verify wrong password fails
			if CheckAPIKey(password+"wrong", hash) {
				t.Error("CheckAPIKey() should reject modified password")
			}
		})
	}
}

func TestHashAPIKeyCost(t *testing.T) {
	password := "testpassword"
	hash, err := HashAPIKey(password)
	if err != nil {
		t.Fatalf("HashAPIKey() error = %v", err)
	}

	// Verify bcrypt cost is DefaultCost
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}

	if cost != bcrypt.DefaultCost {
		t.Errorf("HashAPIKey() cost = %v, want %v", cost, bcrypt.DefaultCost)
	}
}

func BenchmarkHashAPIKey(b *testing.B) {
	password := "benchmarkpassword"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = HashAPIKey(password)
	}
}

func BenchmarkCheckAPIKey(b *testing.B) {
	password := "benchmarkpassword"
	hash, _ := HashAPIKey(password)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = CheckAPIKey(password, hash)
	}
}
