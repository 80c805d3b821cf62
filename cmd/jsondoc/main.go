package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/confkit/jsondoc"
	"github.com/confkit/jsondoc/i18n"
	jdpatch "github.com/confkit/jsondoc/jsonpatch"
	"github.com/confkit/jsondoc/schema"
)

var cli struct {
	Validate ValidateCmd `cmd:"" help:"Validate a document against a schema."`
	Set      SetCmd      `cmd:"" help:"Set the value at a dotted path."`
	Delete   DeleteCmd   `cmd:"" help:"Delete the field at a dotted path."`
	Patch    PatchCmd    `cmd:"" help:"Apply an RFC 6902 patch file."`
	Fmt      FmtCmd      `cmd:"" help:"Reformat a document canonically."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("jsondoc"),
		kong.Description("Order-preserving editor for JSON configuration files."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// outputFlags is shared by the editing commands.
type outputFlags struct {
	Write bool `help:"Rewrite the file in place." short:"w"`
	Diff  bool `help:"Print a unified diff instead of the result." short:"d"`
}

func (f outputFlags) emit(path string, before, after []byte) error {
	switch {
	case f.Diff:
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(before)),
			B:        difflib.SplitLines(string(after)),
			FromFile: path,
			ToFile:   path + " (edited)",
			Context:  3,
		})
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	case f.Write:
		return os.WriteFile(path, after, 0o644)
	default:
		_, err := os.Stdout.Write(after)
		return err
	}
}

type ValidateCmd struct {
	File   string `arg:"" type:"existingfile" help:"Document to validate."`
	Schema string `required:"" type:"existingfile" help:"Schema file (JSON or YAML)."`
	Lang   string `default:"en" help:"Message language (en/ja)."`
}

func (c *ValidateCmd) Run() error {
	i18n.SetLanguage(c.Lang)
	doc, err := loadDocument(c.File)
	if err != nil {
		return err
	}
	sch, err := loadSchema(c.Schema)
	if err != nil {
		return err
	}
	iss := schema.Validate(doc.Content(), sch)
	for _, it := range iss {
		p := it.Path
		if p == "" {
			p = "(root)"
		}
		fmt.Printf("%s %s at %s: %s\n", it.Severity, it.Code, p, it.Message)
	}
	if !iss.Valid() {
		os.Exit(1)
	}
	return nil
}

type SetCmd struct {
	File  string `arg:"" type:"existingfile" help:"Document to edit."`
	Path  string `arg:"" help:"Dotted path, e.g. greetings.morning."`
	Value string `arg:"" help:"JSON-encoded value."`
	outputFlags
}

func (c *SetCmd) Run() error {
	doc, err := loadDocument(c.File)
	if err != nil {
		return err
	}
	v, err := jsondoc.ParseValue([]byte(c.Value))
	if err != nil {
		return fmt.Errorf("bad value %q: %w", c.Value, err)
	}
	next, err := doc.WithUpdatedValue(jsondoc.ParsePath(c.Path), v)
	if err != nil {
		return err
	}
	return c.finish(doc, next)
}

type DeleteCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to edit."`
	Path string `arg:"" help:"Dotted path of the field to remove."`
	outputFlags
}

func (c *DeleteCmd) Run() error {
	doc, err := loadDocument(c.File)
	if err != nil {
		return err
	}
	next, err := doc.Apply(jsondoc.DeleteField{At: jsondoc.ParsePath(c.Path)})
	if err != nil {
		return err
	}
	return c.finish(doc, next)
}

type PatchCmd struct {
	File  string `arg:"" type:"existingfile" help:"Document to edit."`
	Patch string `arg:"" type:"existingfile" help:"RFC 6902 patch file."`
	outputFlags
}

func (c *PatchCmd) Run() error {
	doc, err := loadDocument(c.File)
	if err != nil {
		return err
	}
	patch, err := os.ReadFile(c.Patch)
	if err != nil {
		return err
	}
	next, err := jdpatch.Apply(doc, patch)
	if err != nil {
		return err
	}
	return c.finish(doc, next)
}

type FmtCmd struct {
	File string `arg:"" type:"existingfile" help:"Document to reformat."`
	outputFlags
}

func (c *FmtCmd) Run() error {
	doc, err := loadDocument(c.File)
	if err != nil {
		return err
	}
	out, err := jsondoc.Serialize(doc.Content(), nil)
	if err != nil {
		return err
	}
	before, _ := doc.OriginalText()
	return c.emit(c.File, before, out)
}

func (f outputFlags) finish(before, after *jsondoc.Document) error {
	out, err := after.Serialize()
	if err != nil {
		return err
	}
	orig, _ := before.OriginalText()
	return f.emit(after.SourcePath(), orig, out)
}

func loadDocument(path string) (*jsondoc.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := jsondoc.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc.WithSourcePath(path), nil
}

func loadSchema(path string) (*schema.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return schema.ParseYAML(data)
	default:
		return schema.Parse(data)
	}
}
