package response

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestSuccess(t *testing.T) {
	data := map[string]string{"name": "test"}
	resp := Success(data)

	if !resp.Success {
		t.Error("Expected success to be true")
	}
	if resp.Data == nil {
		t.Error("Expected data to be set")
	}
	if resp.Error != nil {
		t.Error("Expected error to be nil")
	}
	if resp.Meta != nil {
		t.Error("Expected meta to be nil")
	}
}

func TestSuccess_JSONFormat(t *testing.T) {
	data := map[string]string{"id": "123"}
	resp := Success(data)

	jsonBytes, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("Failed to marshal response: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &parsed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if parsed["success"] != true {
		t.Errorf("Expected success=true, got %v", parsed["success"])
	}
	if _, ok := parsed["error"]; ok {
		t.Error("Expected error field to be omitted")
	}
	if _, ok := parsed["meta"]; ok {
		t.Error("Expected meta field to be omitted")
	}
}

func TestError(t *testing.T) {
	resp := Error(ErrCodeNotFound, "Pass not found")

	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Data != nil {
		t.Error("Expected data to be nil")
	}
	if resp.Error == nil {
		t.Fatal("Expected error to be set")
	}
	if resp.Error.Code != ErrCodeNotFound {
		t.Errorf("Expected code %s, got %s", ErrCodeNotFound, resp.Error.Code)
	}
	if resp.Error.Message != "Pass not found" {
		t.Errorf("Expected message 'Pass not found', got '%s'", resp.Error.Message)
	}
}

func TestErrorWithDetails(t *testing.T) {
	details := map[string]string{"visitDateTime": "must be in the future"}
	resp := ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)

	if resp.Error == nil {
		t.Fatal("Expected error to be set")
	}
	if resp.Error.Details["visitDateTime"] != "must be in the future" {
		t.Errorf("Expected detail to be preserved, got %v", resp.Error.Details)
	}
}

func TestPaginated(t *testing.T) {
	tests := []struct {
		name           string
		total          int64
		perPage        int
		wantTotalPages int
	}{
		{"exact pages", 40, 20, 2},
		{"partial last page", 41, 20, 3},
		{"single page", 5, 20, 1},
		{"empty", 0, 20, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Paginated([]string{}, 1, tt.perPage, tt.total)
			if resp.Meta == nil {
				t.Fatal("Expected meta to be set")
			}
			if resp.Meta.TotalPages != tt.wantTotalPages {
				t.Errorf("TotalPages = %d, want %d", resp.Meta.TotalPages, tt.wantTotalPages)
			}
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeValidationFailed, http.StatusBadRequest},
		{ErrCodeInvalidPassStatus, http.StatusConflict},
		{ErrCodeTenantAccessDenied, http.StatusForbidden},
		{ErrCodePassConflict, http.StatusConflict},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := GetHTTPStatus(tt.code); got != tt.status {
			t.Errorf("GetHTTPStatus(%s) = %d, want %d", tt.code, got, tt.status)
		}
	}
}

func TestTenantAccessDenied(t *testing.T) {
	resp := TenantAccessDenied()
	if resp.Success {
		t.Error("Expected success to be false")
	}
	if resp.Error.Code != ErrCodeTenantAccessDenied {
		t.Errorf("Expected code %s, got %s", ErrCodeTenantAccessDenied, resp.Error.Code)
	}
	if GetHTTPStatus(resp.Error.Code) != http.StatusForbidden {
		t.Error("Tenant access denial must map to 403")
	}
}

func TestDefaultPagination(t *testing.T) {
	p := DefaultPagination()
	if p.Page != 1 {
		t.Errorf("Page = %d, want 1", p.Page)
	}
	if p.PerPage != 20 {
		t.Errorf("PerPage = %d, want 20", p.PerPage)
	}
}
