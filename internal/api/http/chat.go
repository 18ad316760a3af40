package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-assistant/internal/assistant"
	"github.com/i474232898/weather-assistant/internal/store"
)

type messageBody struct {
	Text string `json:"text" validate:"required,max=500"`
}

func (h *handler) session(c *fiber.Ctx) (*assistant.Session, error) {
	sess, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return nil, err
	}
	return sess, nil
}

func (h *handler) createSession(c *fiber.Ctx) error {
	sess := assistant.NewSession(assistant.Config{
		Resolver:     h.resolver,
		Fetcher:      h.service,
		Preferences:  h.service.Preferences,
		ReplyTimeout: h.opts.ReplyTimeout,
		Clock:        h.opts.Clock,
	})
	h.sessions.Save(sess)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         sess.ID(),
		"transcript": sess.Transcript(),
	})
}

func (h *handler) getSession(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"id":         sess.ID(),
		"transcript": sess.Transcript(),
	})
}

func (h *handler) deleteSession(c *fiber.Ctx) error {
	if err := h.sessions.Delete(c.Params("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// postMessage sends an utterance. By default it waits for the reply;
// ?wait=false returns the ticket right away.
func (h *handler) postMessage(c *fiber.Ctx) error {
	sess, err := h.session(c)
	if err != nil {
		return err
	}

	var body messageBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ticket, err := sess.Send(body.Text)
	switch {
	case errors.Is(err, assistant.ErrEmptyUtterance):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, assistant.ErrSessionClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	case err != nil:
		return err
	}

	if !c.QueryBool("wait", true) {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ticket": ticket})
	}

	// The pipeline has its own timeout; the extra second covers replacing the placeholder.
	timer := time.NewTimer(h.opts.ReplyTimeout + time.Second)
	defer timer.Stop()
	select {
	case <-ticket.Done:
	case <-timer.C:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"ticket": ticket})
	}

	reply, _ := sess.Message(ticket.PlaceholderID)
	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"reply":      reply,
		"transcript": sess.Transcript(),
	})
}
