package cmd

import (
	"context"
	"fmt"
	"log"

	"wavefm/config"
	"wavefm/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO bucket",
	Long:  `Connect to MinIO and list the objects stored in the configured bucket, optionally filtered by key prefix.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO config: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}

		keys, err := storage.ListObjects(context.Background(), minioPrefix)
		if err != nil {
			log.Fatalf("Failed to list objects: %v", err)
		}

		if len(keys) == 0 {
			fmt.Println("No objects found.")
			return
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		fmt.Printf("\n%d object(s)\n", len(keys))
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "filter objects by key prefix")
}
