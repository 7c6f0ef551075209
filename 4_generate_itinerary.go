package daytrip

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/Harshith20B/daytrip/clustering"
	"github.com/Harshith20B/daytrip/internal/logging"
	"github.com/Harshith20B/daytrip/weather"
)

//go:embed templates/itinerary.html
var htmlTemplate string

//go:embed templates/styles.css
var cssStyles string

const defaultTitle = "Day Trip Itinerary"

var GenerateItineraryCmd = &cobra.Command{
	Use:   "report",
	Short: "Render a clustering result as a markdown and HTML itinerary",
	Run: func(cmd *cobra.Command, args []string) {
		opts := ItineraryOptions{}
		opts.Clusters, _ = cmd.Flags().GetString("clusters")
		opts.Weather, _ = cmd.Flags().GetString("weather")
		opts.Title, _ = cmd.Flags().GetString("title")
		opts.OutDir, _ = cmd.Flags().GetString("out-dir")
		if err := GenerateItinerary(opts); err != nil {
			logging.Fatal().Err(err).Msg("Failed to generate itinerary")
		}
	},
}

func init() {
	f := GenerateItineraryCmd.Flags()
	f.String("clusters", "clusters.json", "clustering result JSON")
	f.String("weather", "", "weather outlook JSON written by forecast")
	f.String("title", defaultTitle, "itinerary title")
	f.String("out-dir", ".", "directory for itinerary.md and itinerary.html")
}

// ItineraryOptions selects the inputs and output directory of
// GenerateItinerary.
type ItineraryOptions struct {
	Clusters string
	Weather  string
	Title    string
	OutDir   string
}

// GenerateItinerary writes itinerary.md and itinerary.html to opts.OutDir.
func GenerateItinerary(opts ItineraryOptions) error {
	var res clustering.Result
	if err := readJSONFile(opts.Clusters, &res); err != nil {
		return err
	}
	if len(res.Clusters) == 0 {
		return fmt.Errorf("%s has no days to render", opts.Clusters)
	}

	var outlook *weather.Outlook
	if opts.Weather != "" {
		outlook = &weather.Outlook{}
		if err := readJSONFile(opts.Weather, outlook); err != nil {
			return err
		}
	}

	title := opts.Title
	if title == "" {
		title = defaultTitle
	}
	now := time.Now()

	md := renderItinerary(title, res, outlook)
	page, err := generateCompleteHTML(title, md, now)
	if err != nil {
		return err
	}

	mdPath := filepath.Join(opts.OutDir, "itinerary.md")
	htmlPath := filepath.Join(opts.OutDir, "itinerary.html")
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", mdPath, err)
	}
	if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", htmlPath, err)
	}

	logging.Info().Str("markdown", mdPath).Str("html", htmlPath).Int("days", len(res.Clusters)).Msg("Itinerary generated")
	return nil
}

// renderItinerary formats the day grouping, and the weather outlook when
// given, as GitHub-flavored markdown.
func renderItinerary(title string, res clustering.Result, outlook *weather.Outlook) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "%d landmarks over %d days, grouped by %s (silhouette %.2f).\n\n",
		res.TotalLandmarks, len(res.Clusters), res.ClusteringMethod, res.SilhouetteScore)

	for _, c := range res.Clusters {
		fmt.Fprintf(&b, "## Day %d\n\n", c.Day)
		fmt.Fprintf(&b, "%d landmarks, average popularity %.1f, centered at %.4f, %.4f.\n\n",
			c.LandmarkCount, c.AvgPopularity, c.Center.Latitude, c.Center.Longitude)

		b.WriteString("| # | Landmark | Popularity | Score | Map |\n")
		b.WriteString("|---|----------|-----------:|------:|-----|\n")
		for i, l := range c.Landmarks {
			fmt.Fprintf(&b, "| %d | %s | %.0f | %.0f | [map](%s) |\n",
				i+1, escapeCell(l.Name), l.Popularity, l.Score, mapURL(l.Latitude, l.Longitude))
		}
		b.WriteString("\n")
	}

	q := res.QualityMetrics
	b.WriteString("## Plan quality\n\n")
	fmt.Fprintf(&b, "- Landmarks per day: %.2f\n", q.AvgLandmarksPerCluster)
	fmt.Fprintf(&b, "- Average distance from day center: %.2f km\n", q.AvgIntraClusterDistance)
	fmt.Fprintf(&b, "- Popularity spread between days: %.2f\n", q.PopularityStdDeviation)
	fmt.Fprintf(&b, "- Balanced: %s\n", yesNo(q.BalancedDistribution))

	if outlook != nil && outlook.Summary != nil {
		writeWeather(&b, outlook)
	}
	return b.String()
}

func writeWeather(b *strings.Builder, o *weather.Outlook) {
	s := o.Summary
	fmt.Fprintf(b, "\n## Weather in %s\n\n", o.City.Name)
	fmt.Fprintf(b, "> %s\n\n", s.Recommendation)
	fmt.Fprintf(b, "Next 30 days: highs around %.1f°C, lows around %.1f°C, %d rainy days, humidity %.1f%%.\n\n",
		s.AvgTempMax, s.AvgTempMin, s.RainyDays, s.AvgHumidity)

	if p := s.BestPeriod; p != nil {
		fmt.Fprintf(b, "Best week to visit: **%s to %s** (%.1f°C, %d rainy days).\n\n",
			p.StartDate, p.EndDate, p.AvgTemp, p.RainyDays)
	}

	if len(s.MonthlyBreakdown) > 0 {
		b.WriteString("| Month | High °C | Low °C | Rainfall mm | Rainy days | Humidity % |\n")
		b.WriteString("|------:|--------:|-------:|------------:|-----------:|-----------:|\n")
		for _, m := range s.MonthlyBreakdown {
			fmt.Fprintf(b, "| %d | %.1f | %.1f | %.1f | %d | %.1f |\n",
				m.Month, m.AvgTempMax, m.AvgTempMin, m.TotalRainfall, m.RainyDays, m.AvgHumidity)
		}
	}
}

func mapURL(lat, lon float64) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.6f&mlon=%.6f#map=17/%.6f/%.6f", lat, lon, lat, lon)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

// generateCompleteHTML renders markdown into the embedded page template.
// The markdown's leading h1 is dropped since the template prints the title.
func generateCompleteHTML(title, markdown string, now time.Time) (string, error) {
	body := markdown
	if first, rest, ok := strings.Cut(body, "\n"); ok && strings.HasPrefix(first, "# ") {
		body = strings.TrimLeft(rest, "\n")
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Linkify,
			extension.Strikethrough,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)

	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	tmpl, err := template.New("itinerary").Parse(htmlTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML template: %w", err)
	}

	data := struct {
		Title string
		Date  string
		Body  template.HTML
		CSS   template.CSS
	}{
		Title: title,
		Date:  now.Format("2 January 2006"),
		Body:  template.HTML(buf.String()),
		CSS:   template.CSS(cssStyles),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return out.String(), nil
}
