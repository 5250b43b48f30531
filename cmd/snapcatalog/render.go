package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/beevik/etree"
	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"google.golang.org/protobuf/encoding/protojson"
	structpb "google.golang.org/protobuf/types/known/structpb"

	"github.com/shibukawa/snapcatalog/catalog"
	"github.com/shibukawa/snapcatalog/rel"
	"github.com/shibukawa/snapcatalog/wire"
)

// notAvailable is printed for audit fields that were never set.
const notAvailable = "N/A"

// columnRow is the flattened, display-ready form of a column.
type columnRow struct {
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	Nullable         bool   `yaml:"nullable"`
	AutoIncrement    bool   `yaml:"auto_increment"`
	Default          string `yaml:"default"`
	Comment          string `yaml:"comment"`
	Creator          string `yaml:"creator"`
	CreateTime       string `yaml:"create_time"`
	LastModifier     string `yaml:"last_modifier"`
	LastModifiedTime string `yaml:"last_modified_time"`
}

func newColumnRow(c rel.Column, loc *time.Location) columnRow {
	row := columnRow{
		Name:             c.Name(),
		Type:             c.DataType().String(),
		Nullable:         c.Nullable(),
		AutoIncrement:    c.AutoIncrement(),
		Comment:          c.Comment(),
		Creator:          notAvailable,
		CreateTime:       notAvailable,
		LastModifier:     notAvailable,
		LastModifiedTime: notAvailable,
	}

	if c.DefaultValue().IsSet() {
		row.Default = c.DefaultValue().Text()
	}

	info, ok := c.AuditInfo().Get()
	if !ok {
		return row
	}

	row.Creator = info.Creator()
	row.CreateTime = info.CreateTime().In(loc).Format(time.RFC3339)
	row.LastModifier = info.LastModifier().OrElse(notAvailable)

	if at, ok := info.LastModifiedTime().Get(); ok {
		row.LastModifiedTime = at.In(loc).Format(time.RFC3339)
	}

	return row
}

// headers are the snake_case keys of columnRow in display order.
var headers = []string{"name", "type", "nullable", "auto_increment", "default", "comment", "creator", "create_time", "last_modifier", "last_modified_time"}

func (r columnRow) values() []string {
	return []string{
		r.Name, r.Type, strconv.FormatBool(r.Nullable), strconv.FormatBool(r.AutoIncrement),
		r.Default, r.Comment, r.Creator, r.CreateTime, r.LastModifier, r.LastModifiedTime,
	}
}

// headerTitles converts snake_case keys into "Title Case" captions.
func headerTitles() []string {
	caser := cases.Title(language.English)
	titles := make([]string, len(headers))

	for i, h := range headers {
		titles[i] = caser.String(strings.ReplaceAll(h, "_", " "))
	}

	return titles
}

// renderer writes the columns of one table in a single output format.
type renderer interface {
	Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error
}

func newRenderer(format string, loc *time.Location, colored bool) (renderer, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch format {
	case "", "table":
		return tableRenderer{loc: loc, colored: colored}, nil
	case "yaml":
		return yamlRenderer{loc: loc}, nil
	case "json":
		return jsonRenderer{}, nil
	case "xml":
		return xmlRenderer{loc: loc}, nil
	case "markdown":
		return markdownRenderer{loc: loc}, nil
	case "html":
		return htmlRenderer{loc: loc}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func rows(cols []rel.Column, loc *time.Location) []columnRow {
	result := make([]columnRow, len(cols))
	for i, c := range cols {
		result[i] = newColumnRow(c, loc)
	}

	return result
}

type tableRenderer struct {
	loc     *time.Location
	colored bool
}

func (r tableRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	header := color.New(color.Bold)
	if !r.colored {
		header.DisableColor()
	}

	header.Fprintf(w, "%s (%d columns)\n", table, len(cols))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headerTitles(), "\t"))

	for _, row := range rows(cols, r.loc) {
		fmt.Fprintln(tw, strings.Join(row.values(), "\t"))
	}

	return tw.Flush()
}

type yamlRenderer struct {
	loc *time.Location
}

func (r yamlRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	doc := struct {
		Table   string      `yaml:"table"`
		Columns []columnRow `yaml:"columns"`
	}{Table: table.String(), Columns: rows(cols, r.loc)}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal yaml: %w", err)
	}

	_, err = w.Write(data)

	return err
}

// jsonRenderer emits the wire encoding so JSON output carries typed defaults
// and RFC 3339 audit timestamps with explicit nulls.
type jsonRenderer struct{}

func (jsonRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(cols))}

	for _, c := range cols {
		s, err := wire.ColumnToStruct(c)
		if err != nil {
			return err
		}

		list.Values = append(list.Values, structpb.NewStructValue(s))
	}

	doc := &structpb.Struct{Fields: map[string]*structpb.Value{
		"table":   structpb.NewStringValue(table.String()),
		"columns": structpb.NewListValue(list),
	}}

	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

type xmlRenderer struct {
	loc *time.Location
}

func (r xmlRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("table")
	if table.Schema != "" {
		root.CreateAttr("schema", table.Schema)
	}

	root.CreateAttr("name", table.Name)

	for _, row := range rows(cols, r.loc) {
		col := root.CreateElement("column")
		col.CreateAttr("name", row.Name)
		col.CreateAttr("type", row.Type)
		col.CreateAttr("nullable", strconv.FormatBool(row.Nullable))
		col.CreateAttr("auto_increment", strconv.FormatBool(row.AutoIncrement))

		if row.Default != "" {
			col.CreateElement("default").SetText(row.Default)
		}

		if row.Comment != "" {
			col.CreateElement("comment").SetText(row.Comment)
		}

		a := col.CreateElement("audit")
		a.CreateAttr("creator", row.Creator)
		a.CreateAttr("create_time", row.CreateTime)
		a.CreateAttr("last_modifier", row.LastModifier)
		a.CreateAttr("last_modified_time", row.LastModifiedTime)
	}

	doc.Indent(2)

	_, err := doc.WriteTo(w)

	return err
}

type markdownRenderer struct {
	loc *time.Location
}

func (r markdownRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	_, err := io.WriteString(w, markdownTable(table, rows(cols, r.loc)))
	return err
}

// markdownTable renders a heading plus a GFM pipe table.
func markdownTable(table catalog.TableIdent, rows []columnRow) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", table)

	titles := headerTitles()
	b.WriteString("| " + strings.Join(titles, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(titles)) + "\n")

	for _, row := range rows {
		values := row.values()
		for i, v := range values {
			values[i] = markdownCell(v)
		}

		b.WriteString("| " + strings.Join(values, " | ") + " |\n")
	}

	return b.String()
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ", "\r", "")

func markdownCell(s string) string {
	return markdownEscaper.Replace(s)
}

type htmlRenderer struct {
	loc *time.Location
}

func (r htmlRenderer) Render(w io.Writer, table catalog.TableIdent, cols []rel.Column) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var buf bytes.Buffer
	if err := md.Convert([]byte(markdownTable(table, rows(cols, r.loc))), &buf); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}

	_, err := buf.WriteTo(w)

	return err
}
