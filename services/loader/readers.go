// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// readSource streams the source file through the reader for its format,
// pushing records into the sink in chunks of Config.chunkSize.
//
// Description:
//
//	Central format dispatch. Every reader shares the same contract: emit
//	records one at a time into a chunker, stop on the first read or Put
//	error, and honor ctx cancellation between chunks.
//
// Inputs:
//   - ctx: cancellation for the whole source read.
//   - src: validated source; Validate must have been called.
//
// Outputs:
//   - error: the first read, parse, or sink error, nil on full drain.
func readSource(ctx context.Context, src *Source) error {
	switch src.Config.Format {
	case FormatCSV:
		return readCSV(ctx, src)
	case FormatFWF:
		return readFWF(ctx, src)
	case FormatXML:
		return readXML(ctx, src)
	case FormatJSON:
		return readJSON(ctx, src)
	case FormatJSONL:
		return readJSONL(ctx, src)
	case FormatParquet:
		return readParquet(ctx, src)
	case FormatORC:
		return readORC(ctx, src)
	default:
		return &UnsupportedFormatError{Format: src.Config.Format}
	}
}

// chunker accumulates records and flushes them to the sink in fixed-size
// batches. Not safe for concurrent use; each source read owns one.
type chunker struct {
	sink  Sink
	size  int
	batch []Record
}

func newChunker(src *Source) *chunker {
	size := src.Config.chunkSize()
	return &chunker{sink: src.Sink, size: size, batch: make([]Record, 0, size)}
}

func (c *chunker) add(ctx context.Context, rec Record) error {
	c.batch = append(c.batch, rec)
	if len(c.batch) >= c.size {
		return c.flush(ctx)
	}
	return nil
}

func (c *chunker) flush(ctx context.Context) error {
	if len(c.batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.sink.Put(ctx, c.batch); err != nil {
		return fmt.Errorf("sink put: %w", err)
	}
	c.batch = c.batch[:0]
	return nil
}

// coerce narrows a raw text cell into int64, then float64, then keeps
// the string. Delimited formats carry no type information, so this is
// the best available typing for downstream numeric nodes.
func coerce(raw string) any {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return f
	}
	return raw
}

// ---- CSV ----

func readCSV(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	if src.Config.Options.Delimiter != 0 {
		r.Comma = src.Config.Options.Delimiter
	}
	r.ReuseRecord = true

	names := src.Config.Options.FieldNames
	if !src.Config.Options.NoHeader {
		header, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if len(names) == 0 {
			names = make([]string, len(header))
			copy(names, header)
		}
	}

	ch := newChunker(src)
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		rec := make(Record, len(row))
		for i, cell := range row {
			name := fmt.Sprintf("col%d", i)
			if i < len(names) {
				name = names[i]
			}
			rec[name] = coerce(cell)
		}
		if err := ch.add(ctx, rec); err != nil {
			return err
		}
	}
	return ch.flush(ctx)
}

// ---- fixed width ----

func readFWF(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	widths := src.Config.Options.Widths
	names := src.Config.Options.FieldNames
	if len(names) == 0 {
		names = make([]string, len(widths))
		for i := range widths {
			names[i] = fmt.Sprintf("col%d", i)
		}
	}

	ch := newChunker(src)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		runes := []rune(sc.Text())
		rec := make(Record, len(widths))
		pos := 0
		for i, w := range widths {
			end := pos + w
			if end > len(runes) {
				end = len(runes)
			}
			var cell string
			if pos < len(runes) {
				cell = string(runes[pos:end])
			}
			rec[names[i]] = coerce(cell)
			pos = end
		}
		if err := ch.add(ctx, rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan rows: %w", err)
	}
	return ch.flush(ctx)
}

// ---- XML ----

// xmlRecord decodes one record element into name/text pairs. Nested
// structure inside a field element is flattened to its character data.
type xmlRecord struct {
	fields []xmlField
}

type xmlField struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

func (x *xmlRecord) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var f xmlField
			if err := d.DecodeElement(&f, &t); err != nil {
				return err
			}
			x.fields = append(x.fields, f)
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

func readXML(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	tag := src.Config.Options.RecordTag
	if tag == "" {
		tag = "row"
	}

	ch := newChunker(src)
	dec := xml.NewDecoder(bufio.NewReader(f))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read token: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != tag {
			continue
		}
		var rx xmlRecord
		if err := rx.UnmarshalXML(dec, start); err != nil {
			return fmt.Errorf("decode %s element: %w", tag, err)
		}
		rec := make(Record, len(rx.fields))
		for _, fld := range rx.fields {
			rec[fld.XMLName.Local] = coerce(strings.TrimSpace(fld.Value))
		}
		if err := ch.add(ctx, rec); err != nil {
			return err
		}
	}
	return ch.flush(ctx)
}

// ---- JSON ----

// readJSON streams a top-level array of objects without buffering the
// whole document.
func readJSON(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReader(f))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil { // opening '['
		return fmt.Errorf("read array start: %w", err)
	}

	ch := newChunker(src)
	for dec.More() {
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode object: %w", err)
		}
		if err := ch.add(ctx, normalizeJSON(raw)); err != nil {
			return err
		}
	}
	return ch.flush(ctx)
}

func readJSONL(ctx context.Context, src *Source) error {
	f, err := os.Open(src.Config.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", src.Config.Path, err)
	}
	defer f.Close()

	ch := newChunker(src)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(text))
		dec.UseNumber()
		var raw map[string]any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode line %d: %w", line, err)
		}
		if err := ch.add(ctx, normalizeJSON(raw)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan lines: %w", err)
	}
	return ch.flush(ctx)
}

// normalizeJSON converts json.Number values to int64 where exact, else
// float64, so records type like delimited sources do.
func normalizeJSON(raw map[string]any) Record {
	rec := make(Record, len(raw))
	for k, v := range raw {
		if num, ok := v.(json.Number); ok {
			if n, err := num.Int64(); err == nil {
				rec[k] = n
				continue
			}
			if fv, err := num.Float64(); err == nil {
				rec[k] = fv
				continue
			}
			rec[k] = num.String()
			continue
		}
		rec[k] = v
	}
	return rec
}
