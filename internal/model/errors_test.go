package model

import "testing"

func TestRemoteErrorRejected(t *testing.T) {
	tests := []struct {
		name string
		err  *RemoteError
		want bool
	}{
		{"conflict", &RemoteError{Status: 409}, true},
		{"bad request", &RemoteError{Status: 400, Message: "Item already claimed"}, true},
		{"forbidden", &RemoteError{Status: 403}, true},
		{"not found", &RemoteError{Status: 404}, true},
		{"unauthorized", &RemoteError{Status: 401}, false},
		{"server error", &RemoteError{Status: 500}, false},
		{"server error with item", &RemoteError{Status: 500, Item: &Item{ID: "1"}}, true},
		{"transport", &RemoteError{}, false},
	}

	for _, tt := range tests {
		if got := tt.err.Rejected(); got != tt.want {
			t.Errorf("%s: expected Rejected() = %v, got %v", tt.name, tt.want, got)
		}
	}
}
