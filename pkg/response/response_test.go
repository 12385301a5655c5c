package response

import (
	"net/http"
	"testing"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeIncorrectCredentials, http.StatusUnauthorized},
		{ErrCodeAccountSuspended, http.StatusForbidden},
		{ErrCodeSoldOut, http.StatusConflict},
		{ErrCodeEventEnded, http.StatusGone},
		{ErrCodePaymentFailed, http.StatusPaymentRequired},
		{ErrCodeFraudDetected, http.StatusForbidden},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := GetHTTPStatus(tt.code); got != tt.want {
				t.Errorf("GetHTTPStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestSuccess(t *testing.T) {
	resp := Success(map[string]string{"id": "1"})

	if !resp.Success {
		t.Error("Success flag should be true")
	}
	if resp.Error != nil {
		t.Error("Error should be nil on success")
	}
	if resp.Data == nil {
		t.Error("Data should be set")
	}
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeSoldOut, "no seats left")

	if resp.Success {
		t.Error("Success flag should be false")
	}
	if resp.Error == nil {
		t.Fatal("Error should be set")
	}
	if resp.Error.Code != ErrCodeSoldOut {
		t.Errorf("Error.Code = %q, want %q", resp.Error.Code, ErrCodeSoldOut)
	}
}

func TestValidationFailed(t *testing.T) {
	resp := ValidationFailed(map[string]string{"first_name": "required"})

	if resp.Error == nil {
		t.Fatal("Error should be set")
	}
	if resp.Error.Code != ErrCodeValidationFailed {
		t.Errorf("Error.Code = %q, want %q", resp.Error.Code, ErrCodeValidationFailed)
	}
	if resp.Error.Details["first_name"] != "required" {
		t.Errorf("Details[first_name] = %q, want %q", resp.Error.Details["first_name"], "required")
	}
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		perPage    int
		wantPages  int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"empty", 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Paginated(nil, 1, tt.perPage, tt.total)
			if resp.Meta == nil {
				t.Fatal("Meta should be set")
			}
			if resp.Meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", resp.Meta.TotalPages, tt.wantPages)
			}
		})
	}
}
