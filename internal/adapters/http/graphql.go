package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/areaselect/internal/core/domain"
	"github.com/samirrijal/areaselect/internal/core/selection"
	"github.com/samirrijal/areaselect/internal/pkg/geospatial"
)

// buildSchema creates the read-only GraphQL schema over selection sessions
// and the area engine.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	pinType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Pin",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"position": &graphql.Field{Type: geoPointType},
			"number":   &graphql.Field{Type: graphql.Int},
		},
	})

	shapeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Shape",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.String},
			"kind":          &graphql.Field{Type: graphql.String},
			"anchor":        &graphql.Field{Type: pinType},
			"radius_meters": &graphql.Field{Type: graphql.Float},
			"width_meters":  &graphql.Field{Type: graphql.Float},
			"height_meters": &graphql.Field{Type: graphql.Float},
			"area_km2":      &graphql.Field{Type: graphql.Float},
		},
	})

	pendingType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PendingAction",
		Fields: graphql.Fields{
			"kind":     &graphql.Field{Type: graphql.String},
			"tool":     &graphql.Field{Type: graphql.String},
			"position": &graphql.Field{Type: geoPointType},
		},
	})

	evaluationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Evaluation",
		Fields: graphql.Fields{
			"source":       &graphql.Field{Type: graphql.String},
			"kind":         &graphql.Field{Type: graphql.String},
			"area_km2":     &graphql.Field{Type: graphql.Float},
			"max_area_km2": &graphql.Field{Type: graphql.Float},
			"within_limit": &graphql.Field{Type: graphql.Boolean},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"tab":         &graphql.Field{Type: graphql.String},
			"tool":        &graphql.Field{Type: graphql.String},
			"area_tool":   &graphql.Field{Type: graphql.String},
			"pins":        &graphql.Field{Type: graphql.NewList(pinType)},
			"shape":       &graphql.Field{Type: shapeType},
			"polygon":     &graphql.Field{Type: graphql.NewList(geoPointType)},
			"pending":     &graphql.Field{Type: pendingType},
			"can_analyze": &graphql.Field{Type: graphql.Boolean},
			"evaluation":  &graphql.Field{Type: evaluationType},
			"created_at":  &graphql.Field{Type: graphql.String},
			"updated_at":  &graphql.Field{Type: graphql.String},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Get a selection session by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					sess, err := deps.Sessions.Get(p.Context, id)
					if errors.Is(err, domain.ErrSessionNotFound) {
						return nil, nil
					}
					if err != nil {
						return nil, err
					}
					return sessionGraph(sess), nil
				},
			},
			"shapeArea": &graphql.Field{
				Type:        graphql.Float,
				Description: "Area in km² of a shape of the given kind and size, in meters",
				Args: graphql.FieldConfigArgument{
					"kind":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"width":  &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"height": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					kind, err := domain.ParseShapeKind(p.Args["kind"].(string))
					if err != nil {
						return nil, err
					}
					var dims domain.Dimensions
					switch kind {
					case domain.ShapeCircle, domain.ShapeHexagon:
						dims = domain.RadiusDimensions{RadiusMeters: p.Args["radius"].(float64)}
					case domain.ShapeSquare:
						dims = domain.SquareDimensions{WidthMeters: p.Args["width"].(float64)}
					default:
						dims = domain.RectDimensions{
							WidthMeters:  p.Args["width"].(float64),
							HeightMeters: p.Args["height"].(float64),
						}
					}
					if err := dims.Validate(); err != nil {
						return nil, err
					}
					return selection.ShapeArea(domain.ShapeDescriptor{Kind: kind, Dimensions: dims}), nil
				},
			},
			"maxAreaKm2": &graphql.Field{
				Type:        graphql.Float,
				Description: "Largest area accepted for analysis",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return geospatial.MaxAnalysisAreaKm2, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

func pointGraph(p domain.GeoPoint) map[string]interface{} {
	return map[string]interface{}{"lat": p.Lat, "lon": p.Lon}
}

func pinGraph(p domain.Pin) map[string]interface{} {
	m := map[string]interface{}{
		"id":       p.ID,
		"position": pointGraph(p.Position),
	}
	if p.Number > 0 {
		m["number"] = p.Number
	}
	return m
}

// sessionGraph flattens a session into the maps graphql-go resolves by key.
func sessionGraph(sess *domain.Session) map[string]interface{} {
	st := sess.State

	pins := make([]map[string]interface{}, 0, len(st.Pins))
	for _, p := range st.Pins {
		pins = append(pins, pinGraph(p))
	}
	polygon := make([]map[string]interface{}, 0, len(st.Pins))
	for _, v := range st.Polygon() {
		polygon = append(polygon, pointGraph(v))
	}

	m := map[string]interface{}{
		"id":          sess.ID,
		"tab":         string(st.Tab),
		"tool":        string(st.Tool),
		"area_tool":   string(st.AreaTool),
		"pins":        pins,
		"polygon":     polygon,
		"can_analyze": selection.CanAnalyze(st),
		"created_at":  sess.CreatedAt.Format(time.RFC3339),
		"updated_at":  sess.UpdatedAt.Format(time.RFC3339),
	}

	if st.Shape != nil {
		shape := map[string]interface{}{
			"id":       st.Shape.ID,
			"kind":     string(st.Shape.Kind),
			"anchor":   pinGraph(st.Shape.Anchor),
			"area_km2": selection.ShapeArea(*st.Shape),
		}
		switch d := st.Shape.Dimensions.(type) {
		case domain.RadiusDimensions:
			shape["radius_meters"] = d.RadiusMeters
		case domain.SquareDimensions:
			shape["width_meters"] = d.WidthMeters
			shape["height_meters"] = d.WidthMeters
		case domain.RectDimensions:
			shape["width_meters"] = d.WidthMeters
			shape["height_meters"] = d.HeightMeters
		}
		m["shape"] = shape
	}

	if pd := domain.DescribePending(st.Pending); pd != nil {
		pending := map[string]interface{}{"kind": pd.Kind}
		if pd.Tool != "" {
			pending["tool"] = string(pd.Tool)
		}
		if pd.Position != nil {
			pending["position"] = pointGraph(*pd.Position)
		}
		m["pending"] = pending
	}

	if eval := selection.Evaluate(st); eval != nil {
		m["evaluation"] = map[string]interface{}{
			"source":       eval.Source,
			"kind":         string(eval.Kind),
			"area_km2":     eval.AreaKm2,
			"max_area_km2": eval.MaxAreaKm2,
			"within_limit": eval.WithinLimit,
		}
	}
	return m
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
