package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/retriever"
	"github.com/rajeevsingh-dev/ServiceNow-Connector/servicenow"
)

var (
	listTop   int
	listLimit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List knowledge articles and display their PDF attachment text",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConfig()
		if err != nil {
			return err
		}
		if listTop > 0 {
			conf.TopN = listTop
		}
		if listLimit > 0 {
			conf.ArticleLimit = listLimit
		}

		fmt.Printf("===== ServiceNow Top %d PDF Documents =====\n", conf.TopN)
		fmt.Println("Instance:", conf.InstanceURL)

		client := servicenow.NewClient(conf)
		r := retriever.New(client, conf.ArticleLimit, conf.MaxParallel)
		return r.ShowTop(cmd.Context(), conf.TopN, os.Stdout)
	},
}

func init() {
	listCmd.Flags().IntVar(&listTop, "top", 0, "number of PDF documents to display (overrides SERVICENOW_TOP_N)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum articles to fetch (overrides SERVICENOW_ARTICLE_LIMIT)")
}
