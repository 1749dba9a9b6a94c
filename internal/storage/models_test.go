package storage

import "testing"

func TestRoleValid(t *testing.T) {
	for _, role := range []Role{RoleSystem, RoleDeveloper, RoleUser, RoleAssistant, RoleFunction, RoleTool, RoleChatbot, RoleModel} {
		if !role.Valid() {
			t.Errorf("Role(%q).Valid() = false, want true", role)
		}
	}
	for _, role := range []Role{"", "alien", "User", "ASSISTANT"} {
		if role.Valid() {
			t.Errorf("Role(%q).Valid() = true, want false", role)
		}
	}
}

func TestMessageDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    MessageData
		wantErr bool
	}{
		{"text message", NewTextData(RoleUser, "hello"), false},
		{"invalid role", NewTextData("alien", "hello"), true},
		{
			"tool message with call id",
			MessageData{Role: RoleTool, Blocks: []ContentBlock{{Type: "text", Text: "[]"}}, ToolCallID: "call_1"},
			false,
		},
		{
			"tool message missing call id",
			MessageData{Role: RoleTool, Blocks: []ContentBlock{{Type: "text", Text: "[]"}}},
			true,
		},
		{
			"assistant tool calls",
			MessageData{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_1", Name: "search_documents", Arguments: "{}"}}},
			false,
		},
		{
			"tool calls on user message",
			MessageData{Role: RoleUser, ToolCalls: []ToolCall{{ID: "call_1", Name: "search_documents", Arguments: "{}"}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMessageDataText(t *testing.T) {
	tests := []struct {
		name string
		data MessageData
		want string
	}{
		{"no blocks", MessageData{Role: RoleAssistant}, ""},
		{"single block", NewTextData(RoleUser, "hello"), "hello"},
		{
			"multiple blocks",
			MessageData{Role: RoleAssistant, Blocks: []ContentBlock{
				{Type: "text", Text: "first"},
				{Type: "text", Text: "second"},
			}},
			"first\nsecond",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.data.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
