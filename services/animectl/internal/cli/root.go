// Package cli implements animectl, an operator tool over the catalog and
// watch-list gateways.
package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/example/animelist/internal/jikan"
	"github.com/example/animelist/internal/mylist"
	"github.com/example/animelist/internal/platform/config"
)

// App holds the gateways commands run against. Nil fields are built from
// the global flags before the command runs.
type App struct {
	Catalog jikan.Catalog
	List    mylist.Gateway
}

type globalFlags struct {
	catalogURL string
	mylistURL  string
	timeout    time.Duration
}

func NewRootCmd(app *App) *cobra.Command {
	if app == nil {
		app = &App{}
	}
	var gf globalFlags

	root := &cobra.Command{
		Use:          "animectl",
		Short:        "Browse the anime catalog and manage the watch list",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Catalog == nil {
				jc := jikan.DefaultConfig()
				jc.BaseURL = gf.catalogURL
				jc.Timeout = gf.timeout
				app.Catalog = jikan.New(jc)
			}
			if app.List == nil {
				app.List = mylist.New(mylist.Config{BaseURL: gf.mylistURL, Timeout: gf.timeout})
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&gf.catalogURL, "catalog-url", config.String("CATALOG_BASE_URL", jikan.DefaultBaseURL), "Jikan API base URL")
	pf.StringVar(&gf.mylistURL, "mylist-url", config.String("MYLIST_BASE_URL", mylist.DefaultBaseURL), "watch-list backend base URL")
	pf.DurationVar(&gf.timeout, "timeout", config.Duration("ANIMECTL_TIMEOUT", 10*time.Second), "per-request timeout")

	root.AddCommand(
		newTickerCmd(app),
		newGenresCmd(app),
		newRecommendCmd(app),
		newListCmd(app),
		newAddCmd(app),
		newSetStatusCmd(app),
		newRemoveCmd(app),
	)
	return root
}
