package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/backends"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/servicenow"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/uploader"
)

var uploadDir string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload PDFs from the policy folder as knowledge-article attachments",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		if uploadDir != "" {
			conf.PolicyDir = uploadDir
		}

		fmt.Println("===== ServiceNow PDF Document Uploader =====")
		fmt.Println("Instance:", conf.InstanceURL)
		fmt.Println("Policy Folder:", conf.PolicyDir)

		client := servicenow.NewClient(conf)
		u := uploader.New(client, &backends.InMemoryBackend{}, conf.PolicyDir, conf.KBCategory)

		report, err := u.Run(cmd.Context())
		if err != nil {
			return err
		}

		if report.Found == 0 {
			fmt.Println("No PDF files found in folder:", conf.PolicyDir)
			return nil
		}

		for _, rec := range report.Records {
			if rec.Published {
				fmt.Printf("published  %s -> %s\n", rec.FileName, rec.ArticleURL)
			} else {
				fmt.Printf("failed     %s (%s)\n", rec.FileName, rec.Error)
			}
		}

		fmt.Println("===== Upload Process Complete =====")
		fmt.Println("Check your ServiceNow instance for the uploaded documents")

		if report.Failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", report.Failed, report.Found)
		}
		return nil
	},
}

func init() {
	uploadCmd.Flags().StringVar(&uploadDir, "dir", "", "folder scanned for PDFs (overrides SERVICENOW_POLICY_DIR)")
}
