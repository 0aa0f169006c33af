package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/areaselect/internal/core/selection"
	"github.com/samirrijal/areaselect/internal/core/usecases"
)

// CreateSessionHandler starts a selection session for a map client.
func CreateSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Create(c.UserContext())
		if err != nil {
			return writeError(c, err)
		}
		c.Location("/v1/sessions/" + sess.ID)
		return c.Status(fiber.StatusCreated).JSON(newSessionView(sess, ""))
	}
}

// GetSessionHandler returns the current selection state.
func GetSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(newSessionView(sess, ""))
	}
}

// DeleteSessionHandler ends a session.
func DeleteSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sessions.Delete(c.UserContext(), c.Params("id")); err != nil {
			return writeError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ActionHandler applies a fixed action type; the body carries its arguments.
// For pin moves the pin ID comes from the :pinId route parameter.
func ActionHandler(deps *Dependencies, typ usecases.ActionType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseActionRequest(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}
		req.Type = string(typ)
		if pinID := c.Params("pinId"); pinID != "" {
			req.PinID = pinID
		}
		return applyAction(c, deps, req)
	}
}

// ActionsHandler applies an action whose type is given in the body. It
// accepts the same messages as the WebSocket channel.
func ActionsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := parseActionRequest(c)
		if err != nil || req.Type == "" {
			return errBadRequest(c, "body must be an action with a type")
		}
		return applyAction(c, deps, req)
	}
}

func parseActionRequest(c *fiber.Ctx) (actionRequest, error) {
	var req actionRequest
	if len(c.Body()) == 0 {
		return req, nil
	}
	err := c.BodyParser(&req)
	return req, err
}

func applyAction(c *fiber.Ctx, deps *Dependencies, req actionRequest) error {
	ctx := c.UserContext()
	id := c.Params("id")

	action, err := req.toAction(ctx, deps.Sessions, id)
	if err != nil {
		return writeError(c, err)
	}
	res, err := deps.Sessions.Apply(ctx, id, action)
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusOK
	if res.Outcome == selection.Deferred {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(newSessionView(res.Session, res.Outcome))
}

// EvaluationHandler returns the area of the current selection without
// requesting analysis. The evaluation is null when nothing is selected.
func EvaluationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		eval, err := deps.Sessions.Evaluate(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(fiber.Map{"evaluation": eval})
	}
}

// AnalyzeHandler runs the analysis gate. Rejections are regular 200
// responses carrying the verdict.
func AnalyzeHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verdict, err := deps.Sessions.Analyze(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(verdict)
	}
}

// GeoJSONHandler renders pins and the shape or polygon outline.
func GeoJSONHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := deps.Sessions.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeError(c, err)
		}
		data, err := selection.GeoJSON(sess.State).MarshalJSON()
		if err != nil {
			return writeError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}
