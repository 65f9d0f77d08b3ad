// This file is part of Gohunk.
//
// Gohunk is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Gohunk is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Gohunk.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bradleyjkemp/memviz"
	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jetsetilly/gohunk/archivefs"
	"github.com/jetsetilly/gohunk/digest"
	"github.com/jetsetilly/gohunk/hunk"
	"github.com/jetsetilly/gohunk/hunkfmt"
	"github.com/jetsetilly/gohunk/loader"
	"github.com/jetsetilly/gohunk/paths"
	"github.com/jetsetilly/gohunk/program"
	"github.com/jetsetilly/gohunk/relocate"
)

// load the file and return the program image. the file must be an executable
func loadImage(filename string) (*program.Image, loader.Loader, error) {
	ld := loader.NewLoader(filename)
	if err := ld.Load(); err != nil {
		return nil, ld, err
	}
	if ld.Type != hunk.TypeLoadSeg {
		return nil, ld, fmt.Errorf("%s is not an executable (%v)", ld.ShortName(), ld.Type)
	}
	img, err := hunkfmt.LoadBytes(ld.Data)
	if err != nil {
		return nil, ld, err
	}
	return img, ld, nil
}

// relocation addresses from the config file unless overridden on the command
// line
type relocFlags struct {
	base    hexValue
	padding uint32
}

func (f *relocFlags) add(cmd *cobra.Command) {
	cmd.Flags().Var(&f.base, "base", "address of the first segment")
	cmd.Flags().Uint32Var(&f.padding, "padding", 0, "bytes between segments")
}

func (f *relocFlags) resolve(cmd *cobra.Command, opts *options) (uint32, uint32) {
	base := opts.cfg.BaseAddress
	if cmd.Flags().Changed("base") {
		base = uint32(f.base)
	}
	padding := opts.cfg.Padding
	if cmd.Flags().Changed("padding") {
		padding = f.padding
	}
	return base, padding
}

func newInfoCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Summary of a hunk file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			ld := loader.NewLoader(args[0])
			if err := ld.Load(); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s: %v (%s)\n", ld.ShortName(), ld.Type, humanize.IBytes(uint64(len(ld.Data))))
			fmt.Fprintf(out, "sha1: %s\n", ld.Hash)

			if ld.Type != hunk.TypeLoadSeg {
				blocks, err := hunk.ReadBytes(ld.Data, false)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d blocks\n", len(blocks))
				return nil
			}

			img, err := hunkfmt.LoadBytes(ld.Data)
			if err != nil {
				return err
			}
			writeSegmentTable(out, img)

			r := relocate.New(img)
			datas, err := r.Relocate(r.SeqAddrs(opts.cfg.BaseAddress, opts.cfg.Padding))
			if err != nil {
				return err
			}
			dig := digest.NewRelocated()
			if err := dig.AddSegments(datas); err != nil {
				return err
			}
			fmt.Fprintf(out, "relocated at %#08x: %s\n", opts.cfg.BaseAddress, dig)

			return nil
		},
	}
}

func writeSegmentTable(out io.Writer, img *program.Image) {
	tw := tablewriter.NewWriter(out)
	tw.SetHeader([]string{"segment", "type", "size", "relocs", "symbols", "line files"})
	for _, s := range img.Segments {
		var syms, files int
		if s.Symbols != nil {
			syms = len(s.Symbols.Symbols)
		}
		if s.DebugLine != nil {
			files = len(s.DebugLine.Files)
		}
		tw.Append([]string{
			s.Name(),
			s.Type.String(),
			humanize.IBytes(uint64(s.Size)),
			fmt.Sprint(s.NumRelocs()),
			fmt.Sprint(syms),
			fmt.Sprint(files),
		})
	}
	tw.Render()
}

func newBlocksCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "blocks FILE",
		Short: "List the blocks in a hunk file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ld := loader.NewLoader(args[0])
			if err := ld.Load(); err != nil {
				return err
			}

			blocks, err := hunk.ReadBytes(ld.Data, ld.Type == hunk.TypeLoadSeg)
			if err != nil {
				return err
			}

			writeBlocks(cmd.OutOrStdout(), blocks, 0)
			return nil
		},
	}
}

func writeBlocks(out io.Writer, blocks []hunk.Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, blk := range blocks {
		switch b := blk.(type) {
		case *hunk.LibBlock:
			fmt.Fprintf(out, "%s%v (%d members)\n", indent, b.ID(), len(b.Blocks))
			writeBlocks(out, b.Blocks, depth+1)
		case *hunk.IndexBlock:
			fmt.Fprintf(out, "%s%v (%d units)\n", indent, b.ID(), len(b.Units))
			for _, u := range b.Units {
				fmt.Fprintf(out, "%s  %s (%d hunks)\n", indent, b.Name(u.NameOffset), len(u.Hunks))
			}
		case *hunk.UnitBlock:
			fmt.Fprintf(out, "%s%v %s\n", indent, b.ID(), b.Name)
		case *hunk.NameBlock:
			fmt.Fprintf(out, "%s%v %s\n", indent, b.ID(), b.Name)
		case *hunk.SegmentBlock:
			fmt.Fprintf(out, "%s%v %d longs\n", indent, b.ID(), b.SizeLongs)
		default:
			fmt.Fprintf(out, "%s%v\n", indent, b.ID())
		}
	}
}

func newDumpCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: "Dump the program image of an executable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, err := loadImage(args[0])
			if err != nil {
				return err
			}

			cfg := spew.ConfigState{
				Indent:                  "  ",
				DisablePointerAddresses: true,
				DisableCapacities:       true,
				SortKeys:                true,
			}

			// the source is the entire file and is not useful in a dump
			img.Source = nil
			cfg.Fdump(cmd.OutOrStdout(), img)

			return nil
		},
	}
}

func newRelocCommand(opts *options) *cobra.Command {
	var flags relocFlags
	var outFile string
	var fixups bool

	cmd := &cobra.Command{
		Use:   "reloc FILE",
		Short: "Relocate an executable into a single block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			img, ld, err := loadImage(args[0])
			if err != nil {
				return err
			}

			base, padding := flags.resolve(cmd, opts)

			r := relocate.New(img)
			addrs := r.SeqAddrs(base, padding)

			tw := tablewriter.NewWriter(out)
			tw.SetHeader([]string{"segment", "type", "address", "size"})
			for i, s := range img.Segments {
				tw.Append([]string{s.Name(), s.Type.String(), fmt.Sprintf("%#08x", addrs[i]), humanize.IBytes(uint64(s.Size))})
			}
			tw.Render()

			datas, err := r.Relocate(addrs)
			if err != nil {
				return err
			}

			dig := digest.NewRelocated()
			if err := dig.AddSegments(datas); err != nil {
				return err
			}
			fmt.Fprintf(out, "digest: %s\n", dig)

			if fixups {
				fx, err := r.Fixups(addrs, datas)
				if err != nil {
					return err
				}
				for _, f := range fx {
					fmt.Fprintln(out, f)
				}
			}

			if cmd.Flags().Changed("out") {
				if outFile == "" {
					outFile = paths.UniqueFilename("reloc", ld.ShortName())
				}

				data, err := r.RelocateOneBlock(base, padding)
				if err != nil {
					return err
				}
				if err := os.WriteFile(outFile, data, 0o644); err != nil {
					return err
				}
				fmt.Fprintf(out, "written %s to %s\n", humanize.IBytes(uint64(len(data))), outFile)
			}

			return nil
		},
	}

	flags.add(cmd)
	cmd.Flags().StringVar(&outFile, "out", "", "write the relocated block to file. a name is generated if empty")
	cmd.Flags().BoolVar(&fixups, "fixups", false, "list every relocated field")

	return cmd
}

func newConvertCommand(opts *options) *cobra.Command {
	var forceLong bool

	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Load an executable and save it again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, err := loadImage(args[0])
			if err != nil {
				return err
			}

			f, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			if err := hunkfmt.Save(f, img, forceLong || opts.cfg.ForceLongRelocs); err != nil {
				return err
			}

			return f.Close()
		},
	}

	cmd.Flags().BoolVar(&forceLong, "long", false, "write relocations in long form")

	return cmd
}

func newGraphCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "graph FILE",
		Short: "Write the program image of an executable as a dot graph",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, err := loadImage(args[0])
			if err != nil {
				return err
			}
			img.Source = nil
			memviz.Map(cmd.OutOrStdout(), img)
			return nil
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list PATH",
		Short: "List the hunk files in a directory or archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var afs archivefs.Path
			if err := afs.Set(args[0]); err != nil {
				return err
			}
			defer afs.Close()

			entries, err := afs.List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, e := range entries {
				switch {
				case e.IsArchive:
					fmt.Fprintf(out, "%s/ (archive)\n", e.Name)
				case e.IsDir:
					fmt.Fprintf(out, "%s/\n", e.Name)
				case e.Type != hunk.TypeUnknown:
					fmt.Fprintf(out, "%s (%v)\n", e.Name, e.Type)
				default:
					fmt.Fprintf(out, "%s\n", e.Name)
				}
			}
			return nil
		},
	}
}

func newTagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the block types and whether they can be read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, id := range hunk.IDs() {
				s := "no"
				if hunk.Supported(id) {
					s = "yes"
				}
				fmt.Fprintf(out, "%4d %-18s %s\n", uint32(id), id, s)
			}
			return nil
		},
	}
}
