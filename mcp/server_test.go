package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/formfill"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Process(ctx context.Context, values formfill.FormValues) ([]byte, error) {
	args := m.Called(ctx, values)
	doc, _ := args.Get(0).([]byte)
	return doc, args.Error(1)
}

func (m *MockService) Fields(ctx context.Context) ([]formfill.Field, error) {
	args := m.Called(ctx)
	fields, _ := args.Get(0).([]formfill.Field)
	return fields, args.Error(1)
}

func newTestServer(t *testing.T, service *MockService) *Server {
	t.Helper()
	s, err := NewServer("formfill-test", "1.0.0", "template.pdf", service)
	require.NoError(t, err)
	return s
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "first content is %T", result.Content[0])
	return text.Text
}

func TestNewServer_NilService(t *testing.T) {
	_, err := NewServer("formfill", "1.0.0", "template.pdf", nil)
	assert.Error(t, err)
}

func TestHandleFillPDF_Success(t *testing.T) {
	service := new(MockService)
	doc := []byte("%PDF-1.7 filled")
	service.On("Process", mock.Anything, formfill.FormValues{"name": "Alice", "sex": "M"}).Return(doc, nil)

	s := newTestServer(t, service)
	result, err := s.handleFillPDF(context.Background(), callRequest("fill_pdf", map[string]any{
		"values": `{"name":"Alice","sex":"M"}`,
	}))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "Filled template.pdf with 2 value(s)")

	require.Len(t, result.Content, 2)
	embedded, ok := result.Content[1].(mcp.EmbeddedResource)
	require.True(t, ok)
	blob, ok := embedded.Resource.(mcp.BlobResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/pdf", blob.MIMEType)

	decoded, err := base64.StdEncoding.DecodeString(blob.Blob)
	require.NoError(t, err)
	assert.Equal(t, doc, decoded)

	service.AssertExpectations(t)
}

func TestHandleFillPDF_ObjectArgument(t *testing.T) {
	service := new(MockService)
	service.On("Process", mock.Anything, formfill.FormValues{"name": "Bob", "city": ""}).Return([]byte("%PDF"), nil)

	s := newTestServer(t, service)
	result, err := s.handleFillPDF(context.Background(), callRequest("fill_pdf", map[string]any{
		"values": map[string]any{"name": "Bob", "city": nil},
	}))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	service.AssertExpectations(t)
}

func TestHandleFillPDF_InvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing values", args: map[string]any{}},
		{name: "malformed json", args: map[string]any{"values": "{not json"}},
		{name: "non string value", args: map[string]any{"values": `{"age": 3}`}},
		{name: "wrong type", args: map[string]any{"values": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(MockService)
			s := newTestServer(t, service)

			result, err := s.handleFillPDF(context.Background(), callRequest("fill_pdf", tt.args))

			require.NoError(t, err)
			assert.True(t, result.IsError)
			service.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
		})
	}
}

func TestHandleFillPDF_ValidationFailure(t *testing.T) {
	service := new(MockService)
	service.On("Process", mock.Anything, mock.Anything).Return(nil, &formfill.ValidationError{
		Violations: []formfill.Violation{{Field: "sex", Value: "X", Allowed: []string{"M", "F"}}},
	})

	s := newTestServer(t, service)
	result, err := s.handleFillPDF(context.Background(), callRequest("fill_pdf", map[string]any{
		"values": `{"sex":"X"}`,
	}))

	require.NoError(t, err)
	assert.True(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "Invalid values found")
	assert.Contains(t, text, `sex: "X" is not one of [M, F]`)
}

func TestHandleFillPDF_PhaseFailures(t *testing.T) {
	tests := []struct {
		phase formfill.Phase
		want  string
	}{
		{phase: formfill.PhaseSchema, want: "Error while downloading validation schema"},
		{phase: formfill.PhaseTemplate, want: "Error while downloading pdf template"},
		{phase: formfill.PhaseFill, want: "Error while filling pdf"},
	}

	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			service := new(MockService)
			service.On("Process", mock.Anything, mock.Anything).
				Return(nil, &formfill.PhaseError{Phase: tt.phase, Err: formfill.ErrStorage})

			s := newTestServer(t, service)
			result, err := s.handleFillPDF(context.Background(), callRequest("fill_pdf", map[string]any{
				"values": `{"name":"Alice"}`,
			}))

			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), tt.want)
		})
	}
}

func TestHandleListFields(t *testing.T) {
	service := new(MockService)
	service.On("Fields", mock.Anything).Return([]formfill.Field{
		{Name: "city", Kind: formfill.KindText, Value: "Springfield"},
		{Name: "sex", Kind: formfill.KindChoiceGroup, Options: []string{"M", "F"}},
	}, nil)

	s := newTestServer(t, service)
	result, err := s.handleListFields(context.Background(), callRequest("list_fields", nil))

	require.NoError(t, err)
	assert.False(t, result.IsError)
	text := resultText(t, result)
	assert.Contains(t, text, "2 field(s) in template.pdf")
	assert.Contains(t, text, `- city (text) current: "Springfield"`)
	assert.Contains(t, text, "- sex (choice_group) options: M, F")
}

func TestHandleListFields_Error(t *testing.T) {
	service := new(MockService)
	service.On("Fields", mock.Anything).Return(nil,
		&formfill.PhaseError{Phase: formfill.PhaseTemplate, Err: formfill.ErrNotFound})

	s := newTestServer(t, service)
	result, err := s.handleListFields(context.Background(), callRequest("list_fields", nil))

	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, new(MockService))

	response := s.mcpServer.HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))

	data, err := json.Marshal(response)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fill_pdf"`)
	assert.Contains(t, string(data), `"list_fields"`)
}
