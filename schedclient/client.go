//
// Copyright © 2017 Solus Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package schedclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Client talks to a running multijobd daemon over a Unix socket.
type Client struct {
	client *http.Client
}

// NewClient returns a new Client dialing the Unix socket at address.
func NewClient(address string) *Client {
	return &Client{
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					return net.Dial("unix", address)
				},
				DisableKeepAlives:     false,
				IdleConnTimeout:       30 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
			Timeout: 20 * time.Second,
		},
	}
}

// Close releases any idle connections held open by the client.
func (c *Client) Close() {
	trans := c.client.Transport.(*http.Transport)
	trans.CloseIdleConnections()
}

func (c *Client) formURI(part string) string {
	return fmt.Sprintf("http://localhost.localdomain:0/%s", part)
}

// GetStatus fetches the daemon's current scheduling snapshot.
func (c *Client) GetStatus() (*Status, error) {
	var status Status
	if err := c.getBasicResponse(c.formURI("api/v1/status"), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetRecentTelemetry fetches the recent telemetry event history.
func (c *Client) GetRecentTelemetry() ([]TelemetryEvent, error) {
	var listing TelemetryListing
	if err := c.getBasicResponse(c.formURI("api/v1/telemetry/recent"), &listing); err != nil {
		return nil, err
	}
	return listing.Events, nil
}

// SetBackgroundLimit sets the daemon's background consumer budget.
func (c *Client) SetBackgroundLimit(n int) error {
	uri := c.formURI(fmt.Sprintf("api/v1/background/limit/%d", n))
	return c.postBasicResponse(uri, &Response{}, &Response{})
}

// TerminateBackground cancels queued (not yet started) background consumer
// slots.
func (c *Client) TerminateBackground() error {
	uri := c.formURI("api/v1/background/terminate")
	return c.postBasicResponse(uri, &Response{}, &Response{})
}

// ProcessClass asks the daemon to synchronously drain the named class
// queue.
func (c *Client) ProcessClass(classID int) error {
	uri := c.formURI(fmt.Sprintf("api/v1/process/%d", classID))
	return c.postBasicResponse(uri, &Response{}, &Response{})
}

func (c *Client) getBasicResponse(url string, outT responseHolder) error {
	resp, err := c.client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.ContentLength != 0 {
		if err := json.NewDecoder(resp.Body).Decode(outT); err != nil {
			return err
		}
	}
	env := outT.response()
	if !env.Error {
		return nil
	}
	return errors.New(env.ErrorString)
}

func (c *Client) postBasicResponse(url string, inT interface{}, outT responseHolder) error {
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(inT); err != nil {
		return err
	}

	resp, err := c.client.Post(url, "application/json; charset=utf-8", buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.ContentLength != 0 {
		if err := json.NewDecoder(resp.Body).Decode(outT); err != nil {
			return err
		}
	}
	env := outT.response()
	if !env.Error {
		return nil
	}
	return errors.New(env.ErrorString)
}

// responseHolder is implemented by every response type embedding Response,
// so the basic-response helpers can check the error envelope generically.
type responseHolder interface {
	response() *Response
}

func (r *Response) response() *Response         { return r }
func (s *Status) response() *Response           { return &s.Response }
func (t *TelemetryListing) response() *Response { return &t.Response }
