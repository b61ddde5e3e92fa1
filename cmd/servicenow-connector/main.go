package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rajeevsingh-dev/ServiceNow-Connector/configuration"
	logger "github.com/rajeevsingh-dev/ServiceNow-Connector/log"
)

var log = logger.Get()

var (
	configFile string
	conf       configuration.Configuration
)

var rootCmd = &cobra.Command{
	Use:   "servicenow-connector",
	Short: "Upload and read ServiceNow knowledge-article PDF attachments",
	Long: `servicenow-connector moves policy documents in and out of a ServiceNow
Knowledge Base over the Table and Attachment REST APIs.

upload   creates a draft kb_knowledge article per PDF in the policy folder,
         attaches the file and publishes the article.
list     lists knowledge articles, finds their PDF attachments and prints
         extracted text previews for the top documents.
extract  extracts text from local PDF files.

Connection settings come from SERVICENOW_INSTANCE_URL, SERVICENOW_USERNAME
and SERVICENOW_PASSWORD, with an optional JSON file via --config.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "optional JSON configuration file")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(extractCmd)
}

// loadConfig resolves configuration and refuses to touch the network while
// required settings are missing, naming every absent variable at once.
func loadConfig() (*configuration.Configuration, error) {
	configuration.LoadConfig(configFile, &conf)
	if err := conf.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr, "Please set these variables in your environment, for example:")
		fmt.Fprintln(os.Stderr, "  SERVICENOW_INSTANCE_URL=https://[your-instance].service-now.com")
		fmt.Fprintln(os.Stderr, "  SERVICENOW_USERNAME=your-username")
		fmt.Fprintln(os.Stderr, "  SERVICENOW_PASSWORD=your-password")
		return nil, err
	}
	return &conf, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
