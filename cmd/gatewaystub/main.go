// Copyright 2025 OpenSec
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command gatewaystub serves the local development stand-in for the
// gateway stack on the address the default agent config points at.
//
// Usage:
//
//	gatewaystub [-addr :8000]
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"opensec/agents/gatewaystub"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	flag.Parse()

	fmt.Printf("[gatewaystub] listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, gatewaystub.New(gatewaystub.Config{})); err != nil {
		fmt.Fprintf(os.Stderr, "gatewaystub: %v\n", err)
		os.Exit(1)
	}
}
