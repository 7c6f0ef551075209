package daytrip

import (
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"

	"github.com/Harshith20B/daytrip/clustering"
	"github.com/Harshith20B/daytrip/internal/logging"
)

// clusteringRequest documents the request with typed landmarks. Records
// that do not match are dropped rather than rejected.
type clusteringRequest struct {
	Landmarks []clustering.Landmark `json:"landmarks" jsonschema:"description=Landmarks to group; invalid entries are dropped"`
	K         *int                  `json:"k,omitempty" jsonschema:"description=Number of days,default=3"`
}

var SchemaCmd = &cobra.Command{
	Use:       "schema <request|response|error>",
	Short:     "Print the JSON schema of the clustering request or response",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"request", "response", "error"},
	Run: func(cmd *cobra.Command, args []string) {
		schema, err := clusteringSchema(args[0])
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to build schema")
		}
		if err := writeJSON(os.Stdout, schema); err != nil {
			logging.Fatal().Err(err).Msg("Failed to write schema")
		}
	},
}

func clusteringSchema(kind string) (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	switch kind {
	case "request":
		return reflector.Reflect(&clusteringRequest{}), nil
	case "response":
		return reflector.Reflect(&clustering.Result{}), nil
	case "error":
		return reflector.Reflect(&clustering.ErrorEnvelope{}), nil
	default:
		return nil, fmt.Errorf("unknown schema %q, want request, response or error", kind)
	}
}
