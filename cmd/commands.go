package main

import (
	"fmt"
	"io"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/okian/lojista/internal/adapters/tui"
	service "github.com/okian/lojista/internal/app"
	"github.com/okian/lojista/internal/app/screen"
	"github.com/okian/lojista/internal/domain/model"
	"github.com/okian/lojista/internal/domain/rating"
)

func (c *cli) viewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view [merchant-id]",
		Short: "Open the merchant screen in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer c.teardown(ctx)

			ctrl, err := service.FromConfig(c.cfg, c.log).Controller()
			if err != nil {
				return err
			}
			m := tui.New(ctx, ctrl, args[0], tui.WithLogger(c.log.Named("tui")))
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [merchant-id]",
		Short: "Load the merchant screen and print it once every fetch has finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer c.teardown(ctx)

			st, err := service.FromConfig(c.cfg, c.log).Show(ctx, args[0])
			printState(cmd.OutOrStdout(), st)
			return err
		},
	}
}

func (c *cli) rateCmd() *cobra.Command {
	var (
		stars    int
		feedback string
	)
	cmd := &cobra.Command{
		Use:   "rate [merchant-id]",
		Short: "Rate a merchant through the rating dialog",
		Long: `Opens the merchant screen, waits for the profile, then submits the rating.
Feedback longer than 50 characters is cut. Where the rating goes is set by
rating_submitter: "log" (default) or "http".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			defer c.teardown(ctx)

			st, err := service.FromConfig(c.cfg, c.log).Rate(ctx, args[0], stars, feedback)
			printState(cmd.OutOrStdout(), st)
			return err
		},
	}
	cmd.Flags().IntVar(&stars, "stars", rating.DefaultStars, "stars, 1 to 5")
	cmd.Flags().StringVar(&feedback, "feedback", "", "optional comment")
	return cmd
}

// printState writes a plain text rendition of the screen.
func printState(w io.Writer, st screen.State) {
	if p, ok := st.Profile.Ready(); ok {
		fmt.Fprintf(w, "%s\n", p.CompanyName)
		fmt.Fprintf(w, "  %s · %s\n", p.Category, model.FormatDistance(p.Distance))
		fmt.Fprintf(w, "  avaliação %s\n", strconv.FormatFloat(p.RatingAverage, 'f', 1, 64))
	} else if st.Profile.Status == screen.PaneLoading {
		fmt.Fprintln(w, screen.TextLoading)
	}
	if st.ErrorMessage != "" {
		fmt.Fprintln(w, st.ErrorMessage)
	}

	fmt.Fprintln(w, "Todas as Postagens")
	if st.ProductsNotice != "" {
		fmt.Fprintf(w, "  %s\n", st.ProductsNotice)
	}
	for _, p := range st.Products {
		fmt.Fprintf(w, "  - %s (%s) %s\n", p.Name, p.Category, strconv.FormatFloat(p.RatingAverage, 'f', 1, 64))
	}
	if st.Notice != "" {
		fmt.Fprintln(w, st.Notice)
	}
}
