// Package iotable loads and sanitizes input-output use tables.
//
// A [RawTable] is whatever a spreadsheet or CSV export contains: commodity
// rows, industry and final-demand columns, summary rows such as value added,
// and missing-data markers. [Sanitize] reduces it, according to a
// [schema.Schema], to a square [Table] over the schema's industries plus the
// auxiliary vectors the network pipeline needs.
//
// # Loading
//
//	raw, err := iotable.Load("use_2015.xlsx", s.Layout)
//	if err != nil {
//	    return err
//	}
//	t, err := iotable.Sanitize(raw, s)
//
// CSV and XLSX inputs are supported. Any other source can build a RawTable
// directly or via [FromRows].
package iotable
