// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package mcp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/mcp/mock_mcp"
	"github.com/rusq/coredumpmcp/internal/registry"
)

func resourceReq(uri string) mcplib.ReadResourceRequest {
	req := mcplib.ReadResourceRequest{}
	req.Params.URI = uri
	return req
}

func textContents(t *testing.T, rc []mcplib.ResourceContents) mcplib.TextResourceContents {
	t.Helper()
	require.Len(t, rc, 1)
	txt, ok := rc[0].(mcplib.TextResourceContents)
	require.True(t, ok, "content is not TextResourceContents")
	return txt
}

func TestIDFromURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		prefix  string
		want    string
		wantErr bool
	}{
		{
			name:   "percent-encoded id",
			uri:    "coredump://dumps/Sat%202023-06-17%2001:50:45%20JST-2465",
			prefix: uriDumpPrefix,
			want:   testID,
		},
		{
			name:   "plain id",
			uri:    "coredump://stacktrace/abc-1",
			prefix: uriStackPrefix,
			want:   "abc-1",
		},
		{
			name:    "empty id",
			uri:     "coredump://dumps/",
			prefix:  uriDumpPrefix,
			wantErr: true,
		},
		{
			name:    "wrong prefix",
			uri:     "coredump://other/abc",
			prefix:  uriDumpPrefix,
			wantErr: true,
		},
		{
			name:    "bad escape",
			uri:     "coredump://dumps/abc%zz",
			prefix:  uriDumpPrefix,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idFromURI(tt.uri, tt.prefix)
			if tt.wantErr {
				assert.ErrorIs(t, err, registry.ErrInvalidParams)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServer_handleDumps(t *testing.T) {
	t.Run("cached dumps", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		mock.EXPECT().Dumps().Return([]coredump.Dump{testDump})

		rc, err := srv.handleDumps(t.Context(), resourceReq(uriDumps))
		require.NoError(t, err)
		txt := textContents(t, rc)
		assert.Equal(t, uriDumps, txt.URI)
		assert.Equal(t, mimeJSON, txt.MIMEType)
		assert.Contains(t, txt.Text, testID)
	})
	t.Run("empty cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		mock.EXPECT().Dumps().Return(nil)

		rc, err := srv.handleDumps(t.Context(), resourceReq(uriDumps))
		require.NoError(t, err)
		assert.Equal(t, "[]", textContents(t, rc).Text)
	})
}

func TestServer_handleDump(t *testing.T) {
	uri := uriDumpPrefix + url.PathEscape(testID)
	t.Run("detail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		mock.EXPECT().Detail(gomock.Any(), testID).Return(testDump, nil)

		rc, err := srv.handleDump(t.Context(), resourceReq(uri))
		require.NoError(t, err)
		txt := textContents(t, rc)
		assert.Equal(t, uri, txt.URI)
		assert.Equal(t, mimeJSON, txt.MIMEType)
		assert.Contains(t, txt.Text, `"exe": "/usr/local/bin/cuteime"`)
	})
	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		mock.EXPECT().Detail(gomock.Any(), testID).Return(coredump.Dump{}, notFound(testID))

		_, err := srv.handleDump(t.Context(), resourceReq(uri))
		assert.ErrorIs(t, err, registry.ErrNotFound)
	})
	t.Run("invalid uri", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, _ := newTestServer(t, ctrl)

		_, err := srv.handleDump(t.Context(), resourceReq(uriDumpPrefix))
		assert.ErrorIs(t, err, registry.ErrInvalidParams)
	})
}

func TestServer_handleStackTrace(t *testing.T) {
	uri := uriStackPrefix + url.PathEscape(testID)
	t.Run("stack trace", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		st := &coredump.StackTrace{DumpID: testID, Signal: "SIGSEGV"}
		mock.EXPECT().StackTrace(gomock.Any(), testID).Return(st, nil)

		rc, err := srv.handleStackTrace(t.Context(), resourceReq(uri))
		require.NoError(t, err)
		txt := textContents(t, rc)
		assert.Equal(t, mimeText, txt.MIMEType)
		assert.Equal(t, st.String(), txt.Text)
	})
	t.Run("gdb failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		srv, mock := newTestServer(t, ctrl)
		mock.EXPECT().StackTrace(gomock.Any(), testID).Return(nil, registry.ErrInternal)

		_, err := srv.handleStackTrace(t.Context(), resourceReq(uri))
		assert.ErrorIs(t, err, registry.ErrInternal)
	})
}

func TestServer_resourceTemplates(t *testing.T) {
	ctrl := gomock.NewController(t)
	srv, _ := newTestServer(t, ctrl)
	rts := srv.resourceTemplates()
	require.Len(t, rts, 2)
	assert.Equal(t, "Coredump", rts[0].Template.Name)
	assert.Equal(t, "Coredump stack trace", rts[1].Template.Name)
}

func readResourceMsg(t *testing.T, uri string) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "resources/read",
		"params":  map[string]any{"uri": uri},
	})
	require.NoError(t, err)
	return data
}

func TestServer_readResource(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		expect func(m *mock_mcp.MockInspector)
		want   string
	}{
		{
			name: "dump with raw colons",
			uri:  uriDumpPrefix + url.PathEscape(testID),
			expect: func(m *mock_mcp.MockInspector) {
				m.EXPECT().Detail(gomock.Any(), testID).Return(testDump, nil)
			},
			want: "/usr/local/bin/cuteime",
		},
		{
			name: "dump fully encoded",
			uri:  uriDumpPrefix + strings.ReplaceAll(url.PathEscape(testID), ":", "%3A"),
			expect: func(m *mock_mcp.MockInspector) {
				m.EXPECT().Detail(gomock.Any(), testID).Return(testDump, nil)
			},
			want: "/usr/local/bin/cuteime",
		},
		{
			name: "stack trace with raw colons",
			uri:  uriStackPrefix + url.PathEscape(testID),
			expect: func(m *mock_mcp.MockInspector) {
				st := &coredump.StackTrace{DumpID: testID, Signal: "SIGSEGV"}
				m.EXPECT().StackTrace(gomock.Any(), testID).Return(st, nil)
			},
			want: "SIGSEGV",
		},
		{
			name: "dump listing",
			uri:  uriDumps,
			expect: func(m *mock_mcp.MockInspector) {
				m.EXPECT().Dumps().Return([]coredump.Dump{testDump})
			},
			want: testID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			srv, mock := newTestServer(t, ctrl)
			tt.expect(mock)

			msg := srv.mcp.HandleMessage(t.Context(), readResourceMsg(t, tt.uri))
			resp, ok := msg.(mcplib.JSONRPCResponse)
			require.True(t, ok, "unexpected response: %s", fmt.Sprint(msg))
			res, ok := resp.Result.(mcplib.ReadResourceResult)
			require.True(t, ok, "unexpected result type %T", resp.Result)
			txt := textContents(t, res.Contents)
			assert.Equal(t, tt.uri, txt.URI)
			assert.Contains(t, txt.Text, tt.want)
		})
	}
}
