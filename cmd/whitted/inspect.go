package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/protobuf/encoding/prototext"

	"whitted/rasterimage"
)

var inspectBody bool

func init() {
	cmdInspect.Flags().BoolVar(&inspectBody, "body", true, "Also decompress and check the pixel body.")
}

var cmdInspect = &cobra.Command{
	Use:   "inspect FILE.raster",
	Short: "Print the header of a raster file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("while opening raster file: %w", err)
		}
		defer f.Close()

		hdr, err := rasterimage.ReadHeader(f)
		if err != nil {
			return fmt.Errorf("while reading header of %s: %w", args[0], err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), prototext.Format(hdr))

		if !inspectBody {
			return nil
		}
		im, err := rasterimage.ReadFromFile(args[0])
		if err != nil {
			return fmt.Errorf("while decoding body of %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "body: %dx%d pixels\n", im.RowSize, im.ColSize)
		return nil
	},
}
