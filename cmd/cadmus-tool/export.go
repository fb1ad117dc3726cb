package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/angelodel80/cadmus-api/internal/export"
	"github.com/angelodel80/cadmus-api/internal/storage"
)

var (
	exportPrefix string
	exportLink   time.Duration
	exportFile   string
)

var exportCmd = &cobra.Command{
	Use:   "export <database>",
	Short: "Back up a database as JSON Lines",
	Long: `Export writes every item with its parts, one per line. The backup
goes to the MinIO bucket unless --file is given.

Example:
  cadmus-tool export cadmus --prefix nightly/
  cadmus-tool export cadmus --file cadmus.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var restoreCmd = &cobra.Command{
	Use:   "restore <database> <key>",
	Short: "Restore a backup into a database",
	Long: `Restore upserts the items and parts of a backup. The key names an
object in the MinIO bucket, or a local file with --file.`,
	Args: cobra.ExactArgs(2),
	RunE: runRestore,
}

var backupsCmd = &cobra.Command{
	Use:   "backups [database]",
	Short: "List the backups taken with export",
	Long: `Backups lists the export journal. With --bucket it lists the backup
objects in the MinIO bucket instead, which also finds backups the journal
never recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		var database string
		if len(args) == 1 {
			database = args[0]
		}
		if fromBucket, _ := cmd.Flags().GetBool("bucket"); fromBucket {
			return listBucket(cmd, database)
		}
		if _, err := repositories(ctx); err != nil {
			return err
		}
		backups, err := journal().List(ctx, database)
		if err != nil {
			return err
		}
		for _, b := range backups {
			fmt.Printf("%s\t%s\t%d items\t%s\n", b.CreatedAt.Format(time.RFC3339), b.Database, b.Items, b.Key)
		}
		return nil
	},
}

func listBucket(cmd *cobra.Command, database string) error {
	ctx := cmd.Context()
	store, err := storage.NewBackupStore(ctx, &cfg.MinIO)
	if err != nil {
		return err
	}
	prefix, _ := cmd.Flags().GetString("prefix")
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, o := range objects {
		if database != "" && o.Database != database {
			continue
		}
		fmt.Printf("%s\t%s\t%d bytes\t%s\n", o.LastModified.UTC().Format(time.RFC3339), o.Database, o.Size, o.Key)
	}
	return nil
}

// journal records backups next to the users collection.
func journal() export.Journal {
	return export.NewMongoJournal(mongoClient.Database(cfg.MongoDB.UsersDatabase))
}

func init() {
	exportCmd.Flags().StringVar(&exportPrefix, "prefix", "", "object key prefix")
	exportCmd.Flags().DurationVar(&exportLink, "link", 0, "also print a download link valid this long")
	exportCmd.Flags().StringVar(&exportFile, "file", "", "write to a local file instead")
	restoreCmd.Flags().Bool("file", false, "read the key as a local file path")
	backupsCmd.Flags().Bool("bucket", false, "list objects in the bucket instead of the journal")
	backupsCmd.Flags().String("prefix", "", "object key prefix, with --bucket")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repos, err := repositories(ctx)
	if err != nil {
		return err
	}
	repo := repos.Repository(args[0])

	if exportFile != "" {
		f, err := os.Create(exportFile)
		if err != nil {
			return err
		}
		defer f.Close()
		n, err := export.Write(ctx, repo, f)
		if err != nil {
			return err
		}
		fmt.Printf("Exported %d items to %s\n", n, exportFile)
		return nil
	}

	store, err := storage.NewBackupStore(ctx, &cfg.MinIO)
	if err != nil {
		return err
	}
	key, n, err := export.Export(ctx, repo, store, exportPrefix, args[0], time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d items to %s/%s\n", n, cfg.MinIO.Bucket, key)
	backup := &export.Backup{Key: key, Database: args[0], Items: n, CreatedAt: time.Now().UTC()}
	if err := journal().Save(ctx, backup); err != nil {
		return err
	}
	if exportLink > 0 {
		url, err := store.Link(ctx, key, exportLink)
		if err != nil {
			return err
		}
		fmt.Println(url)
	}
	return nil
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	repos, err := repositories(ctx)
	if err != nil {
		return err
	}

	var rc io.ReadCloser
	if local, _ := cmd.Flags().GetBool("file"); local {
		rc, err = os.Open(args[1])
	} else {
		var store *storage.BackupStore
		if store, err = storage.NewBackupStore(ctx, &cfg.MinIO); err == nil {
			rc, err = store.Open(ctx, args[1])
		}
	}
	if err != nil {
		return err
	}
	defer rc.Close()

	items, parts, err := export.Restore(ctx, repos.Repository(args[0]), rc)
	if err != nil {
		return err
	}
	fmt.Printf("Restored %d items and %d parts into %s\n", items, parts, args[0])
	return nil
}
