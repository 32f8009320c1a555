// Copyright 2024 AgentFlow Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package agent implements the agent dispatch layer of AgentMarket.

# Overview

A fixed registry maps agent identifiers (writer, code-assistant,
image-generator, voice-assistant, chat-bot, translator) to one of four
modality agents. Each modality agent validates the inbound payload, shapes
the provider request, calls the upstream provider through a Requester and
normalizes the response into a Result.

	┌─────────────────────────────────────────────────────────────┐
	│                         Factory                             │
	│        (Resolve, IDs, Describe, static catalog)             │
	├─────────────────────────────────────────────────────────────┤
	│  ┌──────────┐  ┌──────────┐  ┌───────────┐  ┌───────────┐   │
	│  │   Text   │  │   Code   │  │   Image   │  │   Audio   │   │
	│  └──────────┘  └──────────┘  └───────────┘  └───────────┘   │
	├─────────────────────────────────────────────────────────────┤
	│       Validate            CleanOutput          Requester    │
	└─────────────────────────────────────────────────────────────┘

# Errors

Expected failures are values: a Result carrying an "error" key, for example

	{"error": "Missing required field: prompt"}

Only Factory.Resolve returns a Go error, a *types.Error with code
ErrUnknownAgent that also matches ErrUnknownAgent via errors.Is.

# Usage

	f := agent.NewFactory(agent.FactoryOptions{
	    Models: modelsClient,
	    REST:   restClient,
	}, logger)

	a, err := f.Resolve("writer")
	if err != nil {
	    return err
	}
	res := a.Process(ctx, agent.Payload{"prompt": "hello"})
	if msg, failed := res.ErrorMessage(); failed {
	    // classify msg
	}
*/
package agent
