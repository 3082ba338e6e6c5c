// Package mlog produces consistently formatted log lines about the events
// that flow between the commerce modules.
package mlog

import (
	"fmt"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/quayside/commerce/envelope"
)

// LogPublish logs a message indicating that an event is being published.
func LogPublish(
	log logging.Logger,
	env *envelope.Envelope,
) {
	if !logging.IsDebug(log) {
		return
	}

	logging.Debug(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ProduceIcon,
				"",
			},
			messageType(env),
			env.Message.MessageDescription(),
		),
	)
}

// LogConsume logs a message indicating that an event is being consumed by a
// handler.
//
// fc is the number of times the event has been attempted previously.
func LogConsume(
	log logging.Logger,
	env *envelope.Envelope,
	handler string,
	fc uint,
) {
	logging.Log(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ConsumeIcon,
				retryIcon(fc),
			},
			handler,
			messageType(env),
			env.Message.MessageDescription(),
		),
	)
}

// LogNack logs a message indicating that an event could not be handled and
// will be re-attempted after a delay.
func LogNack(
	log logging.Logger,
	env *envelope.Envelope,
	cause error,
	delay time.Duration,
) {
	logging.Log(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ConsumeErrorIcon,
				ErrorIcon,
			},
			messageType(env),
			cause.Error(),
			fmt.Sprintf("next retry in %s", delay),
		),
	)
}

// LogFromScope logs an informational message produced within a saga via its
// scope.
func LogFromScope(
	log logging.Logger,
	env *envelope.Envelope,
	f string, v []interface{},
) {
	logging.Log(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ConsumeIcon,
				"",
			},
			messageType(env),
			fmt.Sprintf(f, v...),
		),
	)
}

// LogHandlerResult logs a debug message describing the result of handling an
// event within a specific handler.
//
// It is designed to be used with defer.
func LogHandlerResult(
	log logging.Logger,
	env *envelope.Envelope,
	handler string,
	err *error,
	f string, v ...interface{},
) {
	if !logging.IsDebug(log) {
		return
	}

	if p := recover(); p != nil {
		// We don't want to log anything if there was a panic.
		panic(p)
	}

	messages := []string{
		handler,
	}

	if *err != nil {
		messages = append(
			messages,
			(*err).Error(),
		)
	} else {
		messages = append(
			messages,
			"event handled successfully",
		)
	}

	if f != "" {
		messages = append(
			messages,
			fmt.Sprintf(f, v...),
		)
	}

	logging.Debug(
		log,
		String(
			[]IconWithLabel{
				MessageIDIcon.WithID(env.MessageID),
				CausationIDIcon.WithID(env.CausationID),
				CorrelationIDIcon.WithID(env.CorrelationID),
			},
			[]Icon{
				ProcessIcon,
				errorIcon(*err),
			},
			messages...,
		),
	)
}

// messageType returns the name of the event's type for display in a log
// message.
func messageType(env *envelope.Envelope) string {
	return fmt.Sprintf("%T", env.Message)
}

func errorIcon(err error) Icon {
	if err == nil {
		return ""
	}

	return ErrorIcon
}

func retryIcon(n uint) Icon {
	if n == 0 {
		return ""
	}

	return RetryIcon
}
