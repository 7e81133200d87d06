package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/fittrack/internal/datastore"
	"github.com/dukerupert/fittrack/internal/model"
	"github.com/dukerupert/fittrack/internal/validate"
)

var todayCmd = LeafCommand{
	Use:      "today",
	Short:    "Show the check-in for today or --date",
	Args:     cobra.NoArgs,
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		return withUserStore(cmd.Context(), userFlag(cmd), date, func(s *datastore.Store) error {
			return runToday(cmd, s)
		})
	},
}.Build()

var waterCmd = LeafCommand{
	Use:      "water <ml>",
	Short:    "Add water (negative amounts remove)",
	Args:     cobra.ExactArgs(1),
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		ml, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[0])
		}
		date, _ := cmd.Flags().GetString("date")
		return withUserStore(cmd.Context(), userFlag(cmd), date, func(s *datastore.Store) error {
			return runWater(cmd, s, ml)
		})
	},
}.Build()

var sleepCmd = LeafCommand{
	Use:      "sleep <hours>",
	Short:    "Set hours slept",
	Args:     cobra.ExactArgs(1),
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", args[0])
		}
		date, _ := cmd.Flags().GetString("date")
		return withUserStore(cmd.Context(), userFlag(cmd), date, func(s *datastore.Store) error {
			return runSleep(cmd, s, hours)
		})
	},
}.Build()

var mealsCmd = LeafCommand{
	Use:      "meals <breakfast> <lunch> <dinner> <snacks>",
	Short:    "Replace the day's meal calories",
	Args:     cobra.ExactArgs(4),
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		var vals [4]int
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid calories %q", a)
			}
			vals[i] = n
		}
		slots := model.MealSlots{Breakfast: vals[0], Lunch: vals[1], Dinner: vals[2], Snacks: vals[3]}
		date, _ := cmd.Flags().GetString("date")
		return withUserStore(cmd.Context(), userFlag(cmd), date, func(s *datastore.Store) error {
			return runMeals(cmd, s, slots)
		})
	},
}.Build()

var activityCmd = LeafCommand{
	Use:      "activity <type> <minutes> <calories>",
	Short:    "Log an activity (" + strings.Join(model.ActivityTypes, ", ") + ")",
	Args:     cobra.ExactArgs(3),
	StrFlags: []StringFlag{dateFlag},
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes %q", args[1])
		}
		calories, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid calories %q", args[2])
		}
		entry := model.ActivityEntry{Type: args[0], DurationMinutes: minutes, Calories: calories}
		date, _ := cmd.Flags().GetString("date")
		return withUserStore(cmd.Context(), userFlag(cmd), date, func(s *datastore.Store) error {
			return runActivity(cmd, s, entry)
		})
	},
}.Build()

var resetCmd = LeafCommand{
	Use:   "reset",
	Short: "Wipe offline demo data back to its defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUserStore(cmd.Context(), userFlag(cmd), "", func(s *datastore.Store) error {
			return runReset(cmd, s)
		})
	},
}.Build()

func runToday(cmd *cobra.Command, s *datastore.Store) error {
	st, err := s.Load(cmdContext(cmd))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

func runWater(cmd *cobra.Command, s *datastore.Store, ml int) error {
	if ml == 0 {
		return fmt.Errorf("amount must not be 0")
	}
	st, err := s.AddWater(cmdContext(cmd), ml)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

func runSleep(cmd *cobra.Command, s *datastore.Store, hours float64) error {
	if hours < 0 || hours > 24 {
		return fmt.Errorf("hours must be between 0 and 24")
	}
	st, err := s.UpdateSleep(cmdContext(cmd), hours)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

func runMeals(cmd *cobra.Command, s *datastore.Store, slots model.MealSlots) error {
	if err := checkInput(slots); err != nil {
		return err
	}
	st, err := s.SaveMeals(cmdContext(cmd), slots)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

func runActivity(cmd *cobra.Command, s *datastore.Store, entry model.ActivityEntry) error {
	if err := checkInput(entry); err != nil {
		return err
	}
	st, err := s.AddActivity(cmdContext(cmd), entry)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

func runReset(cmd *cobra.Command, s *datastore.Store) error {
	st, err := s.Reset(cmdContext(cmd))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), Info("Offline data reset."))
	_, _ = fmt.Fprint(cmd.OutOrStdout(), renderState(st))
	return nil
}

// checkInput reports the first failing field of v, if any.
func checkInput(v any) error {
	fields := validate.Struct(v)
	for name, msg := range fields {
		return fmt.Errorf("%s %s", name, msg)
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}
