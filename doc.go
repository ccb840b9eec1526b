/*
Package palisade is a declarative authorization-and-dispatch gate: named,
executable operations ("actions") are organized into a hierarchical
namespace of containers ("features"), and every execution is mediated by a
proxy that verifies environment prerequisites ("constraints") and per-call
authorization ("availability") before dispatching.

It separates what rarely changes from what changes on every call:
constraint probes inspect the process environment and are cached per node
until the registry is reset, while availability checks are evaluated fresh
against each call's principal, subject and arguments. This Hexagonal
Architecture keeps the check chain pure; authorization backends, transports
and metrics plug in through adapters.

# Key Concepts

  - Feature: a grouping node holding child actions/features plus constraints.
  - Action: an executable node with perform/prepare logic, constraints and
    ordered availability checks (fail-fast, single denial reason).
  - Stack: a namespace partitioning identifiers; trees register under the
    root feature's stack.
  - Proxy: the only execution path; exposes Available, Perform and Prepare.
  - Envelope: the uniform success/failure result returned from action logic.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/palisade"
		"github.com/aretw0/palisade/pkg/adapters/memory"
		"github.com/aretw0/palisade/pkg/domain"
	)

	func main() {
		auth := memory.New()
		auth.Grant(context.Background(), "alice", "publish")

		gate := palisade.New(palisade.WithAuthorizer(auth))

		err := gate.Register(&domain.Feature{
			Name: "ContentFeature",
			Actions: []*domain.Action{{
				Name: "PublishArticleAction",
				Availability: []domain.Check{
					domain.Can("publish", nil, "you may not publish articles"),
				},
				Perform: func(ctx context.Context, call *domain.Call) (*domain.Envelope, error) {
					return domain.Success(map[string]any{"published": true}), nil
				},
			}},
		})
		if err != nil {
			log.Fatal(err)
		}

		call := &domain.Call{Principal: &domain.Principal{ID: "alice"}}
		env, err := gate.Perform(context.Background(), "", "publish-article", call)
		if err != nil {
			if d := domain.AsDenial(err); d != nil {
				fmt.Println("denied:", d.Reason)
				return
			}
			log.Fatal(err)
		}
		fmt.Println("published:", env.DataAt("published"))
	}
*/
package palisade
