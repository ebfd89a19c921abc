// Package provider talks to an LLM "responses" endpoint on behalf of one
// conversational session.
//
// A ResponsesClient owns three pieces of session state: the pending turns
// that the next Send will post, the history of turns and output items from
// completed sends, and the continuation token (the last response id) that
// chains requests together. Content is queued with the append family
// (Append, Attach, AskToDoAction, AttachExistingData) and posted with Send.
//
// # Sending
//
// Send deduplicates pending turns, posts them to {baseURL}/responses through
// the OpenAI SDK client, and retries server errors, transport failures and
// timeouts a bounded number of times:
//
//	Idle --send--> Sending --2xx--> Idle     (pending -> history, id advances)
//	               Sending --4xx--> Failed   (*APIError, no retry)
//	               Sending --5xx/timeout/net--> Sending (after RetryDelay)
//	               Sending --budget exhausted--> Failed (*RetryError)
//
// A failed Send changes nothing: pending turns stay queued and the response
// id is unchanged.
//
// # Envelopes
//
// Providers answer in several shapes. The response is matched against an
// ordered list of text extractors (see extract.go) and the text is returned
// in one uniform envelope:
//
//	{"choices":[{"message":{"content":"..."}}],"usage":{},"id":"...","object":"chat.completion"}
//
// # Usage
//
//	c := provider.NewResponsesClient(cfg.AISettings(), provider.WithLogger(log))
//	c.Attach("Call Bob tomorrow at noon", "", "")
//	raw, err := c.Send(ctx, model.LevelMedium, model.LevelLow, "", model.RequestOptions{ResponseFormat: model.FormatJSON})
//	if err != nil {
//	    // network or service failure
//	}
//	env, _ := provider.ParseEnvelope(raw)
//	result := parser.Extract(env.Content())
//
// A ResponsesClient is not safe for concurrent use.
package provider
