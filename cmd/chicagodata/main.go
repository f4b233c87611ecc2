package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/openchi/chicagodata"
	"github.com/openchi/chicagodata/internal/dashboard"
	"github.com/openchi/chicagodata/internal/store"
)

var (
	databaseURL string
	censusURL   string
	schoolsURL  string
	crimeURL    string
	skipBuild   bool
	serveAddr   string
)

var rootCmd = &cobra.Command{
	Use:   "chicagodata",
	Short: "Rebuild the Chicago open-data store and run the analysis",
	Long: `chicagodata fetches the Chicago census, public schools, and crime
datasets, rebuilds them in a relational store, and runs ten fixed
analytical SQL questions, printing each result as an aligned table.`,
	RunE: run,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive BI dashboard over a built store",
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db", "", "Database URL (sqlite://, postgres://, or mysql://; default sqlite://FinalDB.db)")
	rootCmd.Flags().StringVar(&censusURL, "census-url", "", "Override the census dataset URL")
	rootCmd.Flags().StringVar(&schoolsURL, "schools-url", "", "Override the schools dataset URL")
	rootCmd.Flags().StringVar(&crimeURL, "crime-url", "", "Override the crime dataset URL")
	rootCmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Run the analysis against an existing store without refetching")

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address for the dashboard (default :8080)")
	rootCmd.AddCommand(serveCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	opts := &chicagodata.Options{
		DatabaseURL: resolveDatabaseURL(),
		CensusURL:   censusURL,
		SchoolsURL:  schoolsURL,
		CrimeURL:    crimeURL,
		Progress:    os.Stderr,
	}

	if !skipBuild {
		if err := chicagodata.Build(ctx, opts); err != nil {
			return err
		}
	}

	return chicagodata.Analyze(ctx, opts.DatabaseURL, os.Stdout)
}

func serve(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	url := resolveDatabaseURL()
	if url == "" {
		url = chicagodata.DefaultDatabaseURL
	}

	st, err := store.Open(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close store: %v\n", err)
		}
	}()

	addr := serveAddr
	if addr == "" {
		addr = os.Getenv("CHICAGODATA_ADDR")
	}
	if addr == "" {
		addr = ":8080"
	}

	server := dashboard.NewServer(st)
	log.Printf("Dashboard listening on %s (store: %s)", addr, url)
	return http.ListenAndServe(addr, server.Handler())
}

// resolveDatabaseURL applies flag, then environment, leaving defaults
// to the library.
func resolveDatabaseURL() string {
	if databaseURL != "" {
		return databaseURL
	}
	return os.Getenv("CHICAGODATA_DB")
}

func main() {
	// A local .env may carry CHICAGODATA_DB and CHICAGODATA_ADDR.
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
