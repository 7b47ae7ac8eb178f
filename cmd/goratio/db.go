package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/philipparndt/goratio/internal/session"
	"github.com/spf13/cobra"
)

var (
	dbDSN     string
	dbName    string
	dbOutput  string
	dbDir     string
	dbTimeout time.Duration
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Share sessions through a Postgres database",
	Long: `Store and retrieve sessions in a Postgres database. The connection
string comes from --dsn, the database.dsn config key or GORATIO_DSN.
With --dir a plain directory of session files is used instead.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the sessions table",
	Args:  cobra.NoArgs,
	Run:   runDBInit,
}

var dbPushCmd = &cobra.Command{
	Use:   "push [session]",
	Short: "Upload a session file",
	Args:  cobra.ExactArgs(1),
	Run:   runDBPush,
}

var dbPullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Download a session into a file",
	Args:  cobra.ExactArgs(1),
	Run:   runDBPull,
}

var dbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions, newest first",
	Args:  cobra.NoArgs,
	Run:   runDBList,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd, dbPushCmd, dbPullCmd, dbListCmd)

	dbCmd.PersistentFlags().StringVar(&dbDSN, "dsn", "", "Postgres connection string")
	dbCmd.PersistentFlags().StringVar(&dbDir, "dir", "", "use a session directory instead of Postgres")
	dbCmd.PersistentFlags().DurationVar(&dbTimeout, "timeout", 30*time.Second, "database operation timeout")
	dbPushCmd.Flags().StringVar(&dbName, "name", "", "name to store the session under (default file name)")
	dbPullCmd.Flags().StringVarP(&dbOutput, "output", "o", "", "output file (default <name>.dcmstate)")
}

func openDB(ctx context.Context) session.Store {
	if dbDir != "" {
		store, err := session.NewFileStore(dbDir)
		if err != nil {
			fatal("opening session directory", err)
		}
		return store
	}

	dsn := dbDSN
	if dsn == "" {
		dsn = cfg.Database.DSN
	}
	if dsn == "" {
		dsn = os.Getenv("GORATIO_DSN")
	}
	if dsn == "" {
		fatal("connecting to database", fmt.Errorf("no connection string configured"))
	}

	store, err := session.NewPostgresStore(ctx, dsn, logger)
	if err != nil {
		fatal("connecting to database", err)
	}
	return store
}

func runDBInit(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	store := openDB(ctx)
	defer store.Close()

	if pg, ok := store.(*session.PostgresStore); ok {
		if err := pg.InitSchema(ctx); err != nil {
			fatal("initializing database", err)
		}
	}
	fmt.Println("Database initialized")
}

func runDBPush(cmd *cobra.Command, args []string) {
	path := args[0]
	snap, err := session.Load(path)
	if err != nil {
		fatal("loading session", err)
	}

	name := dbName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), session.Extension)
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	store := openDB(ctx)
	defer store.Close()

	if err := store.Put(ctx, name, snap); err != nil {
		fatal("storing session", err)
	}
	fmt.Printf("Stored %s as %q\n", path, name)
}

func runDBPull(cmd *cobra.Command, args []string) {
	name := args[0]

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	store := openDB(ctx)
	defer store.Close()

	snap, err := store.Get(ctx, name)
	if err != nil {
		fatal("fetching session", err)
	}

	output := dbOutput
	if output == "" {
		output = name + session.Extension
	}
	if err := session.Save(output, snap); err != nil {
		fatal("saving session", err)
	}
	fmt.Printf("Session %q written to %s\n", name, output)
}

func runDBList(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	store := openDB(ctx)
	defer store.Close()

	entries, err := store.List(ctx)
	if err != nil {
		fatal("listing sessions", err)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSERIES\tSAVED\tID\t")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", e.Name, e.SeriesFilename, e.SavedAt.Local().Format("2006-01-02 15:04"), e.ID)
	}
	tw.Flush()
}
