package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tilmanv/piwake/internal/domain"
)

var alarmsJSON bool

// alarmsCmd lists the configured alarms.
var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "List configured alarms",
	Long:  `List all configured alarms with their schedule and audio stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		alarms := clockConfig.AlarmDefinitions()

		if alarmsJSON {
			var list []map[string]interface{}
			for _, a := range alarms {
				days, _ := a.DayString()
				entry := map[string]interface{}{
					"name":      a.Name,
					"time":      a.TimeString(),
					"days":      days,
					"is_active": a.IsActive,
				}
				if a.ID != nil {
					entry["id"] = *a.ID
				}
				if a.AudioEffect != nil {
					entry["stream"] = a.AudioEffect.Stream.Name
					entry["volume"] = a.AudioEffect.Volume
				}
				list = append(list, entry)
			}
			data := map[string]interface{}{
				"alarms": list,
				"count":  len(list),
			}
			jsonData, err := json.MarshalIndent(data, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal alarms: %w", err)
			}
			fmt.Println(string(jsonData))
			return nil
		}

		if len(alarms) == 0 {
			fmt.Println("No alarms configured.")
			return nil
		}

		fmt.Printf("Alarms (%d):\n\n", len(alarms))
		for _, a := range alarms {
			mark := " "
			if a.IsActive {
				mark = "*"
			}
			days, err := a.DayString()
			if err != nil {
				days = "invalid"
			}
			line := fmt.Sprintf("[%s] %s  %s  %s", mark, a.TimeString(), a.Name, days)
			if a.AudioEffect != nil {
				line += fmt.Sprintf("  (%s at %.0f%%)", a.AudioEffect.Stream.Name, a.AudioEffect.Volume*100)
			}
			fmt.Println(line)
		}

		now := time.Now()
		var next time.Time
		for _, a := range alarms {
			if !a.IsActive {
				continue
			}
			spec, err := a.TriggerSpec(time.Local)
			if err != nil {
				continue
			}
			if run, ok := spec.NextRun(now); ok && (next.IsZero() || run.Before(next)) {
				next = run
			}
		}
		if !next.IsZero() {
			fmt.Printf("\nNext alarm: %s\n", next.Format("Mon 2006-01-02 15:04"))
		}
		return nil
	},
}

var (
	alarmDays   string
	alarmDate   string
	alarmName   string
	alarmStream int
	alarmVolume float64
)

var alarmsAddCmd = &cobra.Command{
	Use:   "add <HH:MM>",
	Short: "Add an alarm",
	Long: `Add a recurring or one-time alarm. Use --days for a recurring alarm
(comma-separated two-letter day names) or --date for a one-time alarm;
without either the alarm fires once at the next occurrence of the time.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var hour, minute int
		if _, err := fmt.Sscanf(args[0], "%d:%d", &hour, &minute); err != nil || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
			return fmt.Errorf("invalid time %q, expected HH:MM", args[0])
		}

		def := &domain.AlarmDefinition{
			Hour:     hour,
			Minute:   minute,
			Name:     alarmName,
			IsActive: true,
		}
		if def.Name == "" {
			def.Name = fmt.Sprintf("Alarm at %s", def.TimeString())
		}

		switch {
		case alarmDays != "":
			days, err := parseWeekdays(alarmDays)
			if err != nil {
				return err
			}
			def.Recurring = days
		case alarmDate != "":
			var d domain.Date
			var month int
			if _, err := fmt.Sscanf(alarmDate, "%d-%d-%d", &d.Year, &month, &d.Day); err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", alarmDate)
			}
			d.Month = time.Month(month)
			def.OneTime = &d
		default:
			def.SetFutureDate(hour, minute, time.Now())
		}

		if alarmStream >= 0 {
			stream, ok := clockConfig.GetAudioStream(alarmStream)
			if !ok {
				return fmt.Errorf("no stream with id %d", alarmStream)
			}
			def.AudioEffect = &domain.StreamAudioEffect{Stream: stream, Volume: alarmVolume}
		}

		clockConfig.AddAlarmDefinition(def)
		days, _ := def.DayString()
		fmt.Printf("Added alarm %d: %s %s (%s)\n", *def.ID, def.TimeString(), def.Name, days)
		return nil
	},
}

var alarmsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove an alarm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid alarm id %q", args[0])
		}
		if !clockConfig.RemoveAlarmDefinition(id) {
			return fmt.Errorf("no alarm with id %d", id)
		}
		fmt.Printf("Removed alarm %d\n", id)
		return nil
	},
}

var alarmsPowernapCmd = &cobra.Command{
	Use:   "powernap",
	Short: "Schedule a powernap alarm",
	Long:  `Add a one-time alarm that rings after the configured powernap duration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := clockConfig.AddPowernapAlarm(time.Now())
		if err != nil {
			return fmt.Errorf("failed to add powernap alarm: %w", err)
		}
		fmt.Printf("Powernap alarm set for %s\n", def.TimeString())
		return nil
	},
}

// parseWeekdays parses a comma-separated list of two-letter day names.
func parseWeekdays(s string) ([]domain.Weekday, error) {
	abbrevs := map[string]domain.Weekday{
		"mo": domain.Monday, "tu": domain.Tuesday, "we": domain.Wednesday,
		"th": domain.Thursday, "fr": domain.Friday, "sa": domain.Saturday,
		"su": domain.Sunday,
	}
	var days []domain.Weekday
	for _, part := range strings.Split(s, ",") {
		wd, ok := abbrevs[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, wd)
	}
	return days, nil
}

func init() {
	alarmsCmd.Flags().BoolVar(&alarmsJSON, "json", false, "Output alarms in JSON format")

	alarmsAddCmd.Flags().StringVar(&alarmDays, "days", "", "Recurring weekdays, e.g. mo,tu,we")
	alarmsAddCmd.Flags().StringVar(&alarmDate, "date", "", "One-time date, YYYY-MM-DD")
	alarmsAddCmd.Flags().StringVar(&alarmName, "name", "", "Alarm name")
	alarmsAddCmd.Flags().IntVar(&alarmStream, "stream", -1, "Audio stream id")
	alarmsAddCmd.Flags().Float64Var(&alarmVolume, "volume", 0.4, "Playback volume 0..1")

	alarmsCmd.AddCommand(alarmsAddCmd)
	alarmsCmd.AddCommand(alarmsRemoveCmd)
	alarmsCmd.AddCommand(alarmsPowernapCmd)
}
