package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		// Valid emails
		{"user@example.com", true},
		{"user.name@example.com", true},
		{"user+tag@example.com", true},
		{"user@subdomain.example.com", true},
		{"user123@example.co.uk", true},
		{"a@b.co", true},

		// Invalid emails - empty/whitespace
		{"", false},
		{"   ", false},

		// Invalid emails - missing parts
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"user@localhost", false}, // needs a dot in the domain

		// Invalid emails - whitespace or extra @
		{"user @example.com", false},
		{"user@ example.com", false},
		{"user@exam ple.com", false},
		{"user@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			got := IsValidEmail(tt.email)
			if got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"  507f1f77bcf86cd799439011  ", true},
		{"507f1f77bcf86cd79943901", false},
		{"zzzf1f77bcf86cd799439011", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidObjectID(tt.id); got != tt.want {
			t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"http://localhost:3000", true},
		{"https://blend.example.com", true},
		{"ftp://example.com", false},
		{"localhost:3000", false},
		{"not-a-url", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidHTTPURL(tt.url); got != tt.want {
			t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestIsValidBookingStatus(t *testing.T) {
	for _, s := range []string{"pending", "approved", "rejected"} {
		if !IsValidBookingStatus(s) {
			t.Errorf("IsValidBookingStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "cancelled", "Approved"} {
		if IsValidBookingStatus(s) {
			t.Errorf("IsValidBookingStatus(%q) = true", s)
		}
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name     string `validate:"required,max=10" label:"Full name"`
		Email    string `validate:"required,email" label:"Email address"`
		Password string `validate:"required,min=8" label:"Password"`
		Guests   int    `validate:"gte=1" label:"Guests"`
	}

	valid := TestInput{Name: "John", Email: "john@example.com", Password: "secret123", Guests: 2}

	tests := []struct {
		name       string
		mutate     func(*TestInput)
		wantErrors bool
		wantFirst  string
	}{
		{name: "valid input", mutate: func(*TestInput) {}},
		{
			name:       "missing name",
			mutate:     func(in *TestInput) { in.Name = "" },
			wantErrors: true,
			wantFirst:  "Full name is required.",
		},
		{
			name:       "name too long",
			mutate:     func(in *TestInput) { in.Name = "VeryLongNameThatExceedsLimit" },
			wantErrors: true,
			wantFirst:  "Full name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			mutate:     func(in *TestInput) { in.Email = "not-an-email" },
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
		{
			name:       "short password",
			mutate:     func(in *TestInput) { in.Password = "short" },
			wantErrors: true,
			wantFirst:  "Password must be at least 8 characters.",
		},
		{
			name:       "zero guests",
			mutate:     func(in *TestInput) { in.Guests = 0 },
			wantErrors: true,
			wantFirst:  "Guests must be at least 1.",
		},
		{
			name:       "missing both",
			mutate:     func(in *TestInput) { in.Name, in.Email = "", "" },
			wantErrors: true,
			wantFirst:  "Full name is required.", // First error
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			result := Validate(in)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v (%s)", result.HasErrors(), tt.wantErrors, result.All())
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	t.Run("no errors", func(t *testing.T) {
		r := &Result{}
		if r.All() != "" {
			t.Errorf("All() = %q, want empty", r.All())
		}
	})

	t.Run("multiple errors", func(t *testing.T) {
		r := &Result{
			Errors: []FieldError{
				{Message: "Error 1"},
				{Message: "Error 2"},
			},
		}
		want := "Error 1; Error 2"
		if r.All() != want {
			t.Errorf("All() = %q, want %q", r.All(), want)
		}
	})
}

func TestValidate_CustomRules(t *testing.T) {
	type StatusInput struct {
		Status string `validate:"required,bookingstatus" label:"Status"`
	}

	type IDInput struct {
		ID string `validate:"required,objectid" label:"Equipment ID"`
	}

	t.Run("valid status", func(t *testing.T) {
		if result := Validate(StatusInput{Status: "approved"}); result.HasErrors() {
			t.Errorf("unexpected errors: %v", result.Errors)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		result := Validate(StatusInput{Status: "shipped"})
		if result.First() != "Status is invalid." {
			t.Errorf("First() = %q", result.First())
		}
	})

	t.Run("invalid object id", func(t *testing.T) {
		result := Validate(IDInput{ID: "nope"})
		if result.First() != "Equipment ID is not a valid id." {
			t.Errorf("First() = %q", result.First())
		}
	})
}
