// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user documents against embedded CUE schemas.
//
// Documents may be written in CUE, YAML or TOML. Whatever the input format,
// the document is turned into a CUE value, unified with a schema definition,
// validated and decoded into a Go struct:
//
//	//go:embed opsfile_schema.cue
//	var schemaBytes []byte
//
//	result, err := cueutil.ParseAndDecode[planDoc](
//	    schemaBytes,
//	    data,
//	    "#Plan",
//	    cueutil.WithFilename("Ops.yaml"),
//	    cueutil.WithFormat(cueutil.FormatYAML),
//	)
//	if err != nil {
//	    return nil, err // error carries the offending field path
//	}
//	return result.Value, nil
package cueutil
