package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"mealplan-go/internal/app"
	"mealplan-go/internal/config"
	"mealplan-go/internal/export"
	"mealplan-go/internal/model"
	"mealplan-go/internal/planner"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "PlanWeek", "AddMaterial").
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// stdin is shared so consecutive prompts do not lose buffered input.
var stdin = bufio.NewReader(os.Stdin)

// dateArg parses args[i] as YYYY-MM-DD, defaulting to today.
func dateArg(args []string, i int) (time.Time, error) {
	if len(args) <= i {
		return model.DateOf(time.Now()), nil
	}
	return model.ParseDate(args[i])
}

func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := stdin.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// overwriteFlag resolves --overwrite against the configured default and asks
// for confirmation on a terminal before replacing filled slots.
func overwriteFlag(cmd *cobra.Command, cfg *config.Config) (bool, error) {
	overwrite := cfg.Planning.Overwrite
	if cmd.Flags().Changed("overwrite") {
		overwrite, _ = cmd.Flags().GetBool("overwrite")
	}
	if !overwrite || !term.IsTerminal(int(os.Stdin.Fd())) {
		return overwrite, nil
	}
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}
	fmt.Print("Replace meals already planned? [y/N] ")
	line, err := stdin.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer != "y" && answer != "yes" {
		return false, errors.New("aborted")
	}
	return true, nil
}

func printMaterial(m model.Material) {
	avail := " "
	if m.IsAvailable {
		avail = "*"
	}
	fmt.Printf("%s %-36s  %-24s  %-10s  %s\n", avail, m.ID, m.Name, m.Category, strings.Join(m.NutritionalInfo, ", "))
}

func printMeal(m model.Meal) {
	fmt.Printf("%-36s  %-9s  %3d min  %s\n", m.ID, m.MealType, m.PreparationTime, m.Name)
}

func printMealDetail(m model.Meal) {
	fmt.Printf("%s (%s)\n", m.Name, m.MealType)
	fmt.Printf("ID:          %s\n", m.ID)
	if m.Description != "" {
		fmt.Printf("Description: %s\n", m.Description)
	}
	fmt.Printf("Prep time:   %d min\n", m.PreparationTime)
	if m.Calories != nil {
		fmt.Printf("Calories:    %d\n", *m.Calories)
	}
	if len(m.Tags) > 0 {
		fmt.Printf("Tags:        %s\n", strings.Join(m.Tags, ", "))
	}
	fmt.Println("Materials:")
	for _, mat := range m.Materials {
		fmt.Printf("  - %s (%s)\n", mat.Name, mat.Category)
	}
	if m.Instructions != "" {
		fmt.Printf("Instructions:\n%s\n", m.Instructions)
	}
}

func printPlan(p *model.MealPlan) {
	done := ""
	if p.IsCompleted {
		done = "  [done]"
	}
	fmt.Printf("%s %s%s\n", model.FormatDate(p.Date), p.Date.Weekday(), done)
	for _, mt := range model.MealTypes() {
		name := "-"
		if m := p.Meal(mt); m != nil {
			name = m.Name
		}
		fmt.Printf("  %-9s  %s\n", mt, name)
	}
	if cal := p.TotalCalories(); cal != nil {
		fmt.Printf("  total: %d min, %d kcal\n", p.TotalPreparationTime(), *cal)
	} else {
		fmt.Printf("  total: %d min\n", p.TotalPreparationTime())
	}
	if p.Notes != "" {
		fmt.Printf("  notes: %s\n", p.Notes)
	}
}

// reportSaved prints plans and, for partial failures, the dates left unsaved.
func reportSaved(plans []*model.MealPlan, err error) error {
	for _, p := range plans {
		printPlan(p)
	}
	if dates := planner.FailedDates(err); len(dates) > 0 {
		for _, d := range dates {
			fmt.Fprintf(os.Stderr, "not saved: %s\n", model.FormatDate(d))
		}
	}
	return err
}

var rootCmd = &cobra.Command{
	Use:          "mealplan",
	Short:        "Meal planning from the ingredients you have",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		profileID := uuid.New().String()
		cfg := config.NewConfig(profileID, defaults["base_dir"])
		cfg.LogDir = defaults["log_dir"]

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", profileID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		archive := cfg.Archive.Type
		if archive == "" {
			archive = "none"
		}
		fmt.Printf("Profile ID:   %s\n", cfg.ProfileID)
		fmt.Printf("Base Dir:     %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Database:     %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Archive:      %s (auto backup: %t)\n", archive, cfg.Archive.AutoBackup)
		fmt.Printf("Encryption:   %s\n", cfg.Encryption.Type)
		if len(cfg.Planning.Restrictions) > 0 {
			fmt.Printf("Restrictions: %s\n", strings.Join(cfg.Planning.Restrictions, ", "))
		}
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}
		if err := app.SetupEncryption(cfg, pass); err != nil {
			return fmt.Errorf("setting up encryption: %w", err)
		}
		fmt.Printf("Key pair written to %s\n", cfg.Encryption.PublicKeyPath)
		return nil
	},
}

var configArchiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Verify the snapshot archive is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}
		if err := app.CheckArchive(cfg); err != nil {
			return fmt.Errorf("archive check failed: %w", err)
		}
		fmt.Println("Archive OK")
		return nil
	},
}

// material command
var materialCmd = &cobra.Command{
	Use:   "material",
	Short: "Manage the ingredient catalog",
}

var materialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials (* marks available)",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		available, _ := cmd.Flags().GetBool("available")

		a, err := newApp("ListMaterials")
		if err != nil {
			return err
		}
		defer a.Close()

		materials, err := a.ListMaterials(cmd.Context(), category, available)
		if err != nil {
			return err
		}
		if len(materials) == 0 {
			fmt.Println("No materials found.")
			return nil
		}
		for _, m := range materials {
			printMaterial(m)
		}
		return nil
	},
}

var materialAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		info, _ := cmd.Flags().GetStringSlice("info")
		available, _ := cmd.Flags().GetBool("available")
		description, _ := cmd.Flags().GetString("description")
		image, _ := cmd.Flags().GetString("image")

		a, err := newApp("AddMaterial")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.AddMaterial(cmd.Context(), planner.NewMaterial{
			Name:            args[0],
			Category:        category,
			NutritionalInfo: info,
			Available:       available,
			Description:     description,
			ImageURL:        image,
		})
		if err != nil {
			return err
		}
		printMaterial(*m)
		return nil
	},
}

var materialSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search materials by name or description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SearchMaterials")
		if err != nil {
			return err
		}
		defer a.Close()

		materials, err := a.SearchMaterials(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(materials) == 0 {
			fmt.Println("No materials found.")
		}
		for _, m := range materials {
			printMaterial(m)
		}
		return nil
	},
}

var materialAvailCmd = &cobra.Command{
	Use:   "avail ID",
	Short: "Mark a material available (or unavailable with --off)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		off, _ := cmd.Flags().GetBool("off")

		a, err := newApp("SetAvailability")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.SetAvailability(cmd.Context(), args[0], !off)
		if err != nil {
			return err
		}
		printMaterial(*m)
		return nil
	},
}

var materialRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a material no meal uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteMaterial")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteMaterial(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted material %s\n", args[0])
		return nil
	},
}

var materialSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalog into an empty store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SeedMaterials")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.SeedMaterials(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Added %d material(s)\n", n)
		return nil
	},
}

// meal command
var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage saved meals",
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType, _ := cmd.Flags().GetString("type")

		a, err := newApp("ListMeals")
		if err != nil {
			return err
		}
		defer a.Close()

		meals, err := a.ListMeals(cmd.Context(), mealType)
		if err != nil {
			return err
		}
		if len(meals) == 0 {
			fmt.Println("No meals found.")
		}
		for _, m := range meals {
			printMeal(m)
		}
		return nil
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetMeal")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.GetMeal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printMealDetail(*m)
		return nil
	},
}

var mealSearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search meals by name, description or tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SearchMeals")
		if err != nil {
			return err
		}
		defer a.Close()

		meals, err := a.SearchMeals(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(meals) == 0 {
			fmt.Println("No meals found.")
		}
		for _, m := range meals {
			printMeal(m)
		}
		return nil
	},
}

var mealUsableCmd = &cobra.Command{
	Use:   "usable",
	Short: "List saved meals whose materials are all available",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UsableMeals")
		if err != nil {
			return err
		}
		defer a.Close()

		meals, err := a.UsableMeals(cmd.Context())
		if err != nil {
			return err
		}
		if len(meals) == 0 {
			fmt.Println("No meals can be made with the available materials.")
		}
		for _, m := range meals {
			printMeal(m)
		}
		return nil
	},
}

var mealAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a meal by hand",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mealType, _ := cmd.Flags().GetString("type")
		materials, _ := cmd.Flags().GetStringSlice("material")
		prep, _ := cmd.Flags().GetInt("prep")
		description, _ := cmd.Flags().GetString("description")
		instructions, _ := cmd.Flags().GetString("instructions")
		tags, _ := cmd.Flags().GetStringSlice("tag")

		in := planner.NewMeal{
			Name:            args[0],
			Description:     description,
			MaterialIDs:     materials,
			MealType:        mealType,
			PreparationTime: prep,
			Instructions:    instructions,
			Tags:            tags,
		}
		if cmd.Flags().Changed("calories") {
			c, _ := cmd.Flags().GetInt("calories")
			in.Calories = &c
		}

		a, err := newApp("AddMeal")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.AddMeal(cmd.Context(), in)
		if err != nil {
			return err
		}
		printMeal(*m)
		return nil
	},
}

var mealRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a meal no plan uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteMeal")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteMeal(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted meal %s\n", args[0])
		return nil
	},
}

// generate command
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Propose meals from available materials",
}

var generateMealsCmd = &cobra.Command{
	Use:   "meals TYPE",
	Short: "Propose meals of one type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		restrictions, _ := cmd.Flags().GetStringSlice("restrict")
		save, _ := cmd.Flags().GetBool("save")

		a, err := newApp("GenerateMeals")
		if err != nil {
			return err
		}
		defer a.Close()

		meals, err := a.GenerateMeals(cmd.Context(), args[0], count, restrictions)
		if err != nil {
			return err
		}
		for _, m := range meals {
			printMealDetail(m)
			fmt.Println()
		}
		if save {
			if err := a.SaveMeals(cmd.Context(), meals); err != nil {
				return err
			}
			fmt.Printf("Saved %d meal(s)\n", len(meals))
		}
		return nil
	},
}

var generateCustomCmd = &cobra.Command{
	Use:   "custom TYPE MATERIAL_ID...",
	Short: "Build one meal around the given materials",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		restrictions, _ := cmd.Flags().GetStringSlice("restrict")
		save, _ := cmd.Flags().GetBool("save")

		a, err := newApp("GenerateCustomMeal")
		if err != nil {
			return err
		}
		defer a.Close()

		m, err := a.GenerateCustomMeal(cmd.Context(), args[0], args[1:], restrictions)
		if err != nil {
			return err
		}
		printMealDetail(*m)
		if save {
			if err := a.SaveMeals(cmd.Context(), []model.Meal{*m}); err != nil {
				return err
			}
			fmt.Println("Saved.")
		}
		return nil
	},
}

// plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate and edit meal plans",
}

var planDayCmd = &cobra.Command{
	Use:   "day [DATE]",
	Short: "Plan one day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}

		a, err := newApp("PlanDay")
		if err != nil {
			return err
		}
		defer a.Close()

		overwrite, err := overwriteFlag(cmd, a.Config())
		if err != nil {
			return err
		}
		p, err := a.PlanDay(cmd.Context(), date, overwrite)
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

var planWeekCmd = &cobra.Command{
	Use:   "week [START]",
	Short: "Plan seven days from START (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := dateArg(args, 0)
		if err != nil {
			return err
		}

		a, err := newApp("PlanWeek")
		if err != nil {
			return err
		}
		defer a.Close()

		overwrite, err := overwriteFlag(cmd, a.Config())
		if err != nil {
			return err
		}
		return reportSaved(a.PlanWeek(cmd.Context(), start, overwrite))
	},
}

var planMonthCmd = &cobra.Command{
	Use:   "month [YYYY-MM]",
	Short: "Plan every day of a month (default this month)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		month := time.Now()
		if len(args) > 0 {
			m, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("month %q: want YYYY-MM", args[0])
			}
			month = m
		}

		a, err := newApp("PlanMonth")
		if err != nil {
			return err
		}
		defer a.Close()

		overwrite, err := overwriteFlag(cmd, a.Config())
		if err != nil {
			return err
		}
		return reportSaved(a.PlanMonth(cmd.Context(), month.Year(), month.Month(), overwrite))
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show [START] [END]",
	Short: "Show stored plans (default today)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		end := start
		if len(args) > 1 {
			if end, err = model.ParseDate(args[1]); err != nil {
				return err
			}
		}

		a, err := newApp("ShowPlans")
		if err != nil {
			return err
		}
		defer a.Close()

		plans, err := a.Plans(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			fmt.Println("No plans found.")
		}
		for _, p := range plans {
			printPlan(p)
		}
		return nil
	},
}

var planAssignCmd = &cobra.Command{
	Use:   "assign DATE TYPE MEAL_ID",
	Short: "Put a saved meal into a slot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("AssignMeal")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.AssignMeal(cmd.Context(), date, args[1], args[2])
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

var planClearCmd = &cobra.Command{
	Use:   "clear DATE TYPE",
	Short: "Empty a slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("ClearSlot")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.ClearSlot(cmd.Context(), date, args[1])
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

var planDoneCmd = &cobra.Command{
	Use:   "done DATE",
	Short: "Mark a plan completed (or not, with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		undo, _ := cmd.Flags().GetBool("undo")
		date, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("SetCompleted")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.SetCompleted(cmd.Context(), date, !undo)
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

var planNoteCmd = &cobra.Command{
	Use:   "note DATE TEXT",
	Short: "Set the notes of a plan",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("SetNotes")
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.SetNotes(cmd.Context(), date, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		printPlan(p)
		return nil
	},
}

var planRmCmd = &cobra.Command{
	Use:   "rm DATE",
	Short: "Delete the plan for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := model.ParseDate(args[0])
		if err != nil {
			return err
		}

		a, err := newApp("DeletePlan")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeletePlan(cmd.Context(), date); err != nil {
			return err
		}
		fmt.Printf("Deleted plan for %s\n", model.FormatDate(date))
		return nil
	},
}

// formatFor picks the --format flag, or the format implied by path.
func formatFor(cmd *cobra.Command, path string) (export.Format, error) {
	if f, _ := cmd.Flags().GetString("format"); f != "" {
		return export.ParseFormat(f)
	}
	if path == "-" {
		return export.FormatYAML, nil
	}
	return export.FormatForPath(path)
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export PATH",
	Short: "Write materials, meals and plans to PATH (- for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFor(cmd, args[0])
		if err != nil {
			return err
		}

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if args[0] == "-" {
			return a.Export(cmd.Context(), os.Stdout, format)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("creating %s: %w", args[0], err)
		}
		if err := a.Export(cmd.Context(), f, format); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Upsert materials, meals and plans from PATH (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := formatFor(cmd, args[0])
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Import(cmd.Context(), r, format)
		if err != nil && !export.IsPartial(err) {
			return err
		}
		fmt.Printf("Imported %d material(s), %d meal(s), %d plan(s)\n", summary.Materials, summary.Meals, summary.Plans)
		if dates := planner.FailedDates(err); len(dates) > 0 {
			for _, d := range dates {
				fmt.Fprintf(os.Stderr, "not saved: %s\n", model.FormatDate(d))
			}
		}
		return err
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded operations",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				duration = op.FinishedAt.Sub(op.StartedAt).Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-18s  %s  %-7s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Local().Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload an encrypted database snapshot to the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Backup(cmd.Context())
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Snapshot version %d archived\n", version)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Download and decrypt the latest snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, _ := cmd.Flags().GetString("to")

		cfg, err := readConfig()
		if err != nil {
			return err
		}
		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		version, err := app.Restore(cfg, pass, dest)
		if err != nil {
			return err
		}
		fmt.Printf("Restored snapshot version %d to %s\n", version, dest)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configArchiveCmd)

	// material subcommands
	materialCmd.AddCommand(materialListCmd, materialAddCmd, materialSearchCmd, materialAvailCmd, materialRmCmd, materialSeedCmd)
	materialListCmd.Flags().StringP("category", "c", "", "Only this category")
	materialListCmd.Flags().BoolP("available", "a", false, "Only available materials")
	materialAddCmd.Flags().StringP("category", "c", "", "Category (meat, seafood, poultry, vegetables, grains, dairy, spices)")
	materialAddCmd.Flags().StringSlice("info", nil, "Nutritional info labels")
	materialAddCmd.Flags().BoolP("available", "a", false, "Mark as available")
	materialAddCmd.Flags().String("description", "", "Description")
	materialAddCmd.Flags().String("image", "", "Image URL")
	materialAvailCmd.Flags().Bool("off", false, "Mark as unavailable")

	// meal subcommands
	mealCmd.AddCommand(mealListCmd, mealShowCmd, mealSearchCmd, mealUsableCmd, mealAddCmd, mealRmCmd)
	mealListCmd.Flags().StringP("type", "t", "", "Only this meal type")
	mealAddCmd.Flags().StringP("type", "t", "", "Meal type (breakfast, lunch, dinner, snack)")
	mealAddCmd.Flags().StringSliceP("material", "m", nil, "Material IDs")
	mealAddCmd.Flags().Int("prep", 0, "Preparation time in minutes")
	mealAddCmd.Flags().Int("calories", 0, "Calories")
	mealAddCmd.Flags().String("description", "", "Description")
	mealAddCmd.Flags().String("instructions", "", "Instructions")
	mealAddCmd.Flags().StringSlice("tag", nil, "Tags")

	// generate subcommands
	generateCmd.AddCommand(generateMealsCmd, generateCustomCmd)
	generateMealsCmd.Flags().IntP("count", "n", 0, "Number of meals (default from config)")
	for _, c := range []*cobra.Command{generateMealsCmd, generateCustomCmd} {
		c.Flags().StringSliceP("restrict", "r", nil, "Dietary restrictions, e.g. vegetarian,no-peanut")
		c.Flags().Bool("save", false, "Save the generated meals")
	}

	// plan subcommands
	planCmd.AddCommand(planDayCmd, planWeekCmd, planMonthCmd, planShowCmd, planAssignCmd, planClearCmd, planDoneCmd, planNoteCmd, planRmCmd)
	for _, c := range []*cobra.Command{planDayCmd, planWeekCmd, planMonthCmd} {
		c.Flags().Bool("overwrite", false, "Replace meals already planned")
		c.Flags().BoolP("yes", "y", false, "Do not ask before overwriting")
	}
	planDoneCmd.Flags().Bool("undo", false, "Mark as not completed")

	// root commands
	rootCmd.AddCommand(configCmd, materialCmd, mealCmd, generateCmd, planCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "", "yaml or json (default from file extension)")
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringP("format", "f", "", "yaml or json (default from file extension)")
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().String("to", "", "Path to write the restored database")
	restoreCmd.MarkFlagRequired("to")
}
