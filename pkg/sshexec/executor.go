/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sshexec runs single CLI commands on network devices over SSH.
// Every call dials, authenticates, runs one command and tears the
// connection down again; nothing is pooled.
package sshexec

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const maxLabelWords = 4

// Recorder receives one observation per Execute call.
type Recorder interface {
	ObserveCommand(command, outcome string, duration time.Duration)
}

// Executor implements the on-demand command path.
type Executor struct {
	defaultTimeout time.Duration
	defaultPort    int
	probeCommand   string
	legacy         bool
	hostKey        ssh.HostKeyCallback
	recorder       Recorder
	tracer         trace.Tracer
	logger         logger.Logger
}

// Option customizes an Executor.
type Option func(*Executor)

// WithRecorder reports executions to r.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) {
		e.recorder = r
	}
}

// WithHostKeyCallback overrides the host key policy from the config.
func WithHostKeyCallback(cb ssh.HostKeyCallback) Option {
	return func(e *Executor) {
		e.hostKey = cb
	}
}

// NewExecutor builds an Executor from the ssh section of the service config.
func NewExecutor(cfg *models.SSHConfig, log logger.Logger, opts ...Option) (*Executor, error) {
	if cfg == nil {
		cfg = &models.SSHConfig{}
	}

	e := &Executor{
		defaultTimeout: cfg.CommandTimeout.Std(),
		defaultPort:    cfg.DefaultPort,
		probeCommand:   cfg.ProbeCommand,
		legacy:         cfg.LegacyAlgorithms,
		tracer:         logger.GetTracer("routerwatch/sshexec"),
		logger:         logger.Component(log, "sshexec"),
	}

	if e.defaultTimeout <= 0 {
		e.defaultTimeout = models.DefaultCommandTimeout
	}

	if e.defaultPort <= 0 {
		e.defaultPort = models.DefaultAdminPort
	}

	if e.probeCommand == "" {
		e.probeCommand = models.DefaultProbeCommand
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.hostKey == nil {
		cb, err := hostKeyCallback(cfg.KnownHostsFile, e.logger)
		if err != nil {
			return nil, err
		}

		e.hostKey = cb
	}

	return e, nil
}

func hostKeyCallback(knownHostsFile string, log logger.Logger) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		log.Warn().Msg("No known_hosts file configured, device host keys will not be verified")

		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // opt-in via config
	}

	cb, err := knownhosts.New(knownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", knownHostsFile, err)
	}

	return cb, nil
}

// Execute runs command on device and returns its output. A non-positive
// timeout selects the configured default. Errors match one of
// ErrConnectionFailure, ErrAuthenticationFailure, ErrCommandFailure or
// ErrTimeout.
func (e *Executor) Execute(ctx context.Context, device *models.Device, command string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = e.defaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	label := commandLabel(command)

	ctx, span := e.tracer.Start(ctx, "sshexec.Execute", trace.WithAttributes(
		attribute.Int64("device.id", device.ID),
		attribute.String("device.address", device.Address()),
		attribute.String("command", label),
	))
	defer span.End()

	start := time.Now()
	output, err := e.run(ctx, device, command)
	elapsed := time.Since(start)

	outcome := Kind(err)

	if e.recorder != nil {
		e.recorder.ObserveCommand(label, outcome, elapsed)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)

		e.logger.Warn().
			Err(err).
			Int64("device_id", device.ID).
			Str("device", device.Label()).
			Str("command", label).
			Dur("elapsed", elapsed).
			Msg("Command execution failed")

		return "", err
	}

	e.logger.Debug().
		Int64("device_id", device.ID).
		Str("command", label).
		Int("bytes", len(output)).
		Dur("elapsed", elapsed).
		Msg("Command executed")

	return output, nil
}

// TestConnection runs the benign probe command and reports whether it succeeded.
func (e *Executor) TestConnection(ctx context.Context, device *models.Device) bool {
	_, err := e.Execute(ctx, device, e.probeCommand, 0)

	return err == nil
}

type runResult struct {
	output []byte
	err    error
}

func (e *Executor) run(ctx context.Context, device *models.Device, command string) (string, error) {
	client, err := e.dial(ctx, device)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	session, err := client.NewSession()
	if err != nil {
		if ctx.Err() != nil {
			return "", timeoutError(ctx, "open session")
		}

		return "", fmt.Errorf("%w: open session: %w", ErrConnectionFailure, err)
	}
	defer func() { _ = session.Close() }()

	done := make(chan runResult, 1)

	go func() {
		out, runErr := session.CombinedOutput(command)
		done <- runResult{output: out, err: runErr}
	}()

	select {
	case <-ctx.Done():
		// closing the client aborts the remote session
		_ = client.Close()

		return "", timeoutError(ctx, "run command")
	case res := <-done:
		return classifyRun(command, string(res.output), res.err)
	}
}

func (e *Executor) dial(ctx context.Context, device *models.Device) (*ssh.Client, error) {
	host := device.Address()
	if host == "" {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailure, errNoAddress)
	}

	addr := net.JoinHostPort(host, strconv.Itoa(device.SSHPort(e.defaultPort)))

	var d net.Dialer

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil, timeoutError(ctx, "connect")
		}

		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFailure, addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, e.clientConfig(device))
	if err != nil {
		_ = conn.Close()

		return nil, classifyHandshake(ctx, addr, err)
	}

	// the command phase is bounded by ctx instead
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(c, chans, reqs), nil
}

func (e *Executor) clientConfig(device *models.Device) *ssh.ClientConfig {
	secret := device.Credential

	cfg := &ssh.ClientConfig{
		User: device.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(secret),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = secret
				}

				return answers, nil
			}),
		},
		HostKeyCallback: e.hostKey,
	}

	if e.legacy {
		supported := ssh.SupportedAlgorithms()
		insecure := ssh.InsecureAlgorithms()

		cfg.KeyExchanges = slices.Concat(supported.KeyExchanges, insecure.KeyExchanges)
		cfg.Ciphers = slices.Concat(supported.Ciphers, insecure.Ciphers)
		cfg.MACs = slices.Concat(supported.MACs, insecure.MACs)
		cfg.HostKeyAlgorithms = slices.Concat(supported.HostKeys, insecure.HostKeys)
	}

	return cfg
}

func classifyHandshake(ctx context.Context, addr string, err error) error {
	if ctx.Err() != nil || errors.Is(err, os.ErrDeadlineExceeded) || deadlinePassed(ctx) {
		return timeoutError(ctx, "handshake")
	}

	if strings.Contains(err.Error(), "unable to authenticate") {
		return fmt.Errorf("%w: %s: %w", ErrAuthenticationFailure, addr, err)
	}

	return fmt.Errorf("%w: handshake with %s: %w", ErrConnectionFailure, addr, err)
}

func deadlinePassed(ctx context.Context) bool {
	deadline, ok := ctx.Deadline()

	return ok && !time.Now().Before(deadline)
}

func classifyRun(command, output string, err error) (string, error) {
	var exitErr *ssh.ExitError

	var missing *ssh.ExitMissingError

	switch {
	case err == nil, errors.As(err, &missing):
		// many network OSes never send an exit status
	case errors.As(err, &exitErr):
		return "", &CommandError{Command: command, ExitStatus: exitErr.ExitStatus(), Output: output}
	default:
		return "", fmt.Errorf("%w: run %q: %w", ErrConnectionFailure, command, err)
	}

	if hasCLIError(output) {
		return "", &CommandError{Command: command, ExitStatus: NoExitStatus, Output: output}
	}

	return output, nil
}

func timeoutError(ctx context.Context, stage string) error {
	cause := ctx.Err()
	if cause == nil {
		cause = context.DeadlineExceeded
	}

	return fmt.Errorf("%w: %s: %w", ErrTimeout, stage, cause)
}

// commandLabel bounds the metric label to the leading words of the command.
func commandLabel(command string) string {
	words := strings.Fields(command)
	if len(words) > maxLabelWords {
		words = words[:maxLabelWords]
	}

	return strings.Join(words, " ")
}
