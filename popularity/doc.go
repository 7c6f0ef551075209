// Package popularity estimates how popular a landmark is by combining public
// sources: Wikipedia page summaries, Foursquare place search and
// OpenStreetMap tags, with an OpenAI estimate as a last resort. Enriched
// landmarks can be kept in a sqlite catalog and later fed to clustering.
package popularity
