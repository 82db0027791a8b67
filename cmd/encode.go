package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haxorport/rawrelay/internal/infrastructure/requestfile"
)

var (
	// Encode command flags
	encodeFormat string
	encodeCRLF   bool
)

// encodeCmd turns a raw request into a request file line
var encodeCmd = &cobra.Command{
	Use:   "encode [raw_file]",
	Short: "Encode a raw request as a request file line",
	Long: `Read one raw request from a file (or - for stdin) and print it as a single
line that can be appended to a request file.
Examples:
  rawrelay encode get.http >> requests.txt
  rawrelay encode --crlf --format base64 post.http >> requests.txt`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, err := requestfile.ParseFormat(encodeFormat)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		data, err := readRaw(args[0])
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if encodeCRLF {
			data = requestfile.NormalizeCRLF(data)
		}

		fmt.Println(requestfile.Encode(data, format))
	},
}

func readRaw(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	RootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringVarP(&encodeFormat, "format", "f", string(requestfile.FormatLiteral), "Output format (literal, base64)")
	encodeCmd.Flags().BoolVar(&encodeCRLF, "crlf", false, "Convert bare LF line endings to CRLF")
}
