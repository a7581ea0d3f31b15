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

// In this file: MCP resources and resource templates.

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"

	"github.com/rusq/coredumpmcp/internal/coredump"
	"github.com/rusq/coredumpmcp/internal/registry"
)

const (
	uriDumps         = "coredump://dumps"
	uriDumpPrefix    = "coredump://dumps/"
	uriStackPrefix   = "coredump://stacktrace/"
	mimeJSON         = "application/json"
	mimeText         = "text/plain"
	// reserved expansion, so that ids with raw colons still match
	uriTemplateDump  = uriDumpPrefix + "{+id}"
	uriTemplateStack = uriStackPrefix + "{+id}"
)

// resourceDumps returns the static resource with the cached dump listing.
func (s *Server) resourceDumps() (mcplib.Resource, mcpsrv.ResourceHandlerFunc) {
	res := mcplib.NewResource(uriDumps, "Coredumps",
		mcplib.WithResourceDescription("The crash dumps listed by the last list_coredumps call."),
		mcplib.WithMIMEType(mimeJSON),
	)
	return res, s.handleDumps
}

func (s *Server) handleDumps(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	dumps := s.insp.Dumps()
	if dumps == nil {
		dumps = []coredump.Dump{}
	}
	return jsonContents(req.Params.URI, dumps)
}

// resourceTemplates returns the resource templates for the individual dumps.
func (s *Server) resourceTemplates() []mcpsrv.ServerResourceTemplate {
	return []mcpsrv.ServerResourceTemplate{
		{
			Template: mcplib.NewResourceTemplate(uriTemplateDump, "Coredump",
				mcplib.WithTemplateDescription("Details of a crash dump.  The id must be percent-encoded."),
				mcplib.WithTemplateMIMEType(mimeJSON),
			),
			Handler: s.handleDump,
		},
		{
			Template: mcplib.NewResourceTemplate(uriTemplateStack, "Coredump stack trace",
				mcplib.WithTemplateDescription("Stack trace of all threads of a crash dump.  The id must be percent-encoded."),
				mcplib.WithTemplateMIMEType(mimeText),
			),
			Handler: s.handleStackTrace,
		},
	}
}

func (s *Server) handleDump(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	id, err := idFromURI(req.Params.URI, uriDumpPrefix)
	if err != nil {
		return nil, err
	}
	d, err := s.insp.Detail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", req.Params.URI, err)
	}
	return jsonContents(req.Params.URI, d)
}

func (s *Server) handleStackTrace(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	id, err := idFromURI(req.Params.URI, uriStackPrefix)
	if err != nil {
		return nil, err
	}
	st, err := s.insp.StackTrace(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", req.Params.URI, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: mimeText,
			Text:     st.String(),
		},
	}, nil
}

// idFromURI returns the percent-decoded dump id that follows prefix in uri.
func idFromURI(uri, prefix string) (string, error) {
	raw, ok := strings.CutPrefix(uri, prefix)
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: invalid resource uri: %q", registry.ErrInvalidParams, uri)
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid resource uri: %q: %w", registry.ErrInvalidParams, uri, err)
	}
	return id, nil
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: resource %s: %w", registry.ErrInternal, uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		},
	}, nil
}
