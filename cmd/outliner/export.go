package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/at-ishikawa/outliner/internal/export"
)

type BulletFlag export.BulletStyle

// Set implements pflag.Value.
func (b *BulletFlag) Set(v string) error {
	style, err := export.ParseBulletStyle(v)
	if err != nil {
		return fmt.Errorf("invalid value %q, valid values are %q", v, export.BulletStyles)
	}
	*b = BulletFlag(style)
	return nil
}

// String implements pflag.Value.
func (b *BulletFlag) String() string {
	if b == nil {
		return ""
	}
	return string(*b)
}

// Type implements pflag.Value.
func (b *BulletFlag) Type() string {
	return "BulletFlag"
}

type FontFlag export.FontFamily

// Set implements pflag.Value.
func (f *FontFlag) Set(v string) error {
	family, err := export.ParseFontFamily(v)
	if err != nil {
		return fmt.Errorf("invalid value %q, valid values are %q", v, export.FontFamilies)
	}
	*f = FontFlag(family)
	return nil
}

// String implements pflag.Value.
func (f *FontFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FontFlag) Type() string {
	return "FontFlag"
}

var (
	_ pflag.Value = (*BulletFlag)(nil)
	_ pflag.Value = (*FontFlag)(nil)
)

func newExportCommand() *cobra.Command {
	var (
		bullet    BulletFlag
		font      FontFlag
		focusID   string
		outputDir string
		writePDF  bool
	)
	exportCommand := &cobra.Command{
		Use:   "export <note id>",
		Short: "Export a note as markdown, or as PDF with --pdf",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, a *app, args []string) error {
			n, err := a.store.LoadNote(cmd.Context(), a.userID, args[0])
			if err != nil {
				return fmt.Errorf("store.LoadNote(%s) > %w", args[0], err)
			}

			opts := export.Options{
				Bullet:  export.BulletStyle(bullet),
				Font:    export.FontFamily(font),
				Title:   n.Title,
				FocusID: focusID,
			}
			if opts.Bullet == "" {
				if opts.Bullet, err = export.ParseBulletStyle(a.cfg.Export.BulletStyle); err != nil {
					return err
				}
			}
			if opts.Font == "" {
				if opts.Font, err = export.ParseFontFamily(a.cfg.Export.FontFamily); err != nil {
					return err
				}
			}

			if !writePDF {
				_, err := fmt.Fprint(cmd.OutOrStdout(), export.Markdown(n.RootNodes, opts))
				return err
			}

			dir := outputDir
			if dir == "" {
				dir = a.cfg.Export.OutputDirectory
			}
			path, err := export.PDF(n.RootNodes, opts, dir, export.FileName(n.Title, n.ID))
			if err != nil {
				return fmt.Errorf("export.PDF() > %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		}),
	}

	flags := exportCommand.Flags()
	flags.Var(&bullet, "bullet", "Bullet style. Options: disc, dash, number, none")
	flags.Var(&font, "font", "Font family of the PDF. Options: sans, serif, mono")
	flags.StringVar(&focusID, "focus", "", "Export only the subtree of this node")
	flags.StringVar(&outputDir, "output", "", "Output directory of the PDF")
	flags.BoolVar(&writePDF, "pdf", false, "Write a PDF file instead of printing markdown")
	return exportCommand
}
