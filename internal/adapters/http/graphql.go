package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/wanderbook/internal/core/domain"
)

// sourceTrip unwraps the resolver source, which is a value inside lists and a pointer elsewhere.
func sourceTrip(src interface{}) *domain.Trip {
	switch t := src.(type) {
	case *domain.Trip:
		return t
	case domain.Trip:
		return &t
	}
	return nil
}

func pageArgs(p graphql.ResolveParams, def, max int) (int, int) {
	offset, _ := p.Args["offset"].(int)
	limit, _ := p.Args["limit"].(int)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	return offset, limit
}

// buildSchema creates the GraphQL schema over the public catalog.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	tripType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Trip",
		Fields: graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.String},
			"slug":                 &graphql.Field{Type: graphql.String},
			"title":                &graphql.Field{Type: graphql.String},
			"destination":          &graphql.Field{Type: graphql.String},
			"category":             &graphql.Field{Type: graphql.String},
			"description":          &graphql.Field{Type: graphql.String},
			"images":               &graphql.Field{Type: graphql.NewList(graphql.String)},
			"start_date":           &graphql.Field{Type: graphql.DateTime},
			"end_date":             &graphql.Field{Type: graphql.DateTime},
			"max_participants":     &graphql.Field{Type: graphql.Int},
			"current_participants": &graphql.Field{Type: graphql.Int},
			"completed":            &graphql.Field{Type: graphql.Boolean},
			"rating":               &graphql.Field{Type: graphql.Float},
			"review_count":         &graphql.Field{Type: graphql.Int},
			"price": &graphql.Field{
				Type:        graphql.String,
				Description: "Decimal price as a string",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if t := sourceTrip(p.Source); t != nil {
						return t.Price.StringFixed(2), nil
					}
					return nil, nil
				},
			},
			"seats_left": &graphql.Field{
				Type:        graphql.Int,
				Description: "Remaining seats, null when unlimited",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					t := sourceTrip(p.Source)
					if t == nil || t.SeatsLeft() < 0 {
						return nil, nil
					}
					return t.SeatsLeft(), nil
				},
			},
		},
	})

	reviewType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Review",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"trip_id":     &graphql.Field{Type: graphql.String},
			"author_name": &graphql.Field{Type: graphql.String},
			"rating":      &graphql.Field{Type: graphql.Int},
			"comment":     &graphql.Field{Type: graphql.String},
			"created_at":  &graphql.Field{Type: graphql.DateTime},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"trips": &graphql.Field{
				Type:        graphql.NewList(tripType),
				Description: "List published trips",
				Args: graphql.FieldConfigArgument{
					"category":    &graphql.ArgumentConfig{Type: graphql.String},
					"destination": &graphql.ArgumentConfig{Type: graphql.String},
					"offset":      &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":       &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					category, _ := p.Args["category"].(string)
					destination, _ := p.Args["destination"].(string)
					offset, limit := pageArgs(p, 20, 100)
					trips, _, err := deps.Trips.ListPublished(p.Context, domain.TripFilter{
						Category:    category,
						Destination: destination,
						Offset:      offset,
						Limit:       limit,
					})
					return trips, err
				},
			},
			"trip": &graphql.Field{
				Type:        tripType,
				Description: "Get a published trip by UUID or slug",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, _ := p.Args["id"].(string)
					return deps.Trips.GetPublished(p.Context, id)
				},
			},
			"tripReviews": &graphql.Field{
				Type:        graphql.NewList(reviewType),
				Description: "Approved reviews of a published trip",
				Args: graphql.FieldConfigArgument{
					"tripId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					ref, _ := p.Args["tripId"].(string)
					trip, err := deps.Trips.GetPublished(p.Context, ref)
					if err != nil {
						return nil, err
					}
					offset, limit := pageArgs(p, 20, 100)
					reviews, _, err := deps.Reviews.ListApproved(p.Context, trip.ID, offset, limit)
					return reviews, err
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
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
