package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/pdftext"
)

var extractSave bool

var extractCmd = &cobra.Command{
	Use:   "extract [file.pdf ...]",
	Short: "Extract and display text from local PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, pdfFile := range args {
			fmt.Printf("\n--- Extracting text from: %s ---\n", pdfFile)

			info, err := os.Stat(pdfFile)
			if err != nil {
				fmt.Println("File not found:", pdfFile)
				failed++
				continue
			}
			fmt.Printf("File size: %d bytes\n", info.Size())
			if info.Size() == 0 {
				fmt.Println("File is empty (0 bytes)")
				failed++
				continue
			}

			text, err := pdftext.ExtractFilePages(pdfFile)
			if err != nil {
				fmt.Println("Error extracting PDF text:", err)
				failed++
				continue
			}

			fmt.Println("\nEXTRACTED TEXT:")
			fmt.Println(strings.Repeat("=", 60))
			fmt.Println(text)
			fmt.Println(strings.Repeat("=", 60))

			if extractSave {
				textFile := strings.TrimSuffix(pdfFile, ".pdf") + "_text.txt"
				if err := os.WriteFile(textFile, []byte(text), 0o644); err != nil {
					fmt.Println("Could not save text file:", err)
					failed++
					continue
				}
				fmt.Println("Text saved to:", textFile)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d files could not be extracted", failed, len(args))
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", true, "save extracted text next to each PDF")
}
