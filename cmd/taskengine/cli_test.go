package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/kubev2v/taskengine/internal/models"
	"github.com/kubev2v/taskengine/internal/server/middlewares"
)

var _ = Describe("taskengine", func() {
	var (
		dir    string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := newRootCmd()
		cmd.SetArgs(args)
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		return cmd.Execute()
	}

	BeforeEach(func() {
		color.NoColor = true

		var err error
		dir, err = os.MkdirTemp("", "taskengine-cli-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	Context("read", func() {
		// Given two files on disk and a pool without workers
		// When they are read
		// Then the command drains the queue itself and prints one checksum per file
		It("should read files without workers", func() {
			// Arrange
			a := filepath.Join(dir, "a.txt")
			b := filepath.Join(dir, "b.txt")
			Expect(os.WriteFile(a, []byte("hello"), 0o600)).To(Succeed())
			Expect(os.WriteFile(b, bytes.Repeat([]byte("b"), 10000), 0o600)).To(Succeed())

			// Act
			err := execute("read", "--workers", "0", "--no-progress", a, b)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			Expect(lines).To(HaveLen(2))
			// sha256("hello")
			Expect(lines[0]).To(ContainSubstring("2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"))
			Expect(lines[0]).To(HavePrefix("OK"))
			Expect(lines[1]).To(HaveSuffix(b))
		})

		It("should fail on a missing file", func() {
			ok := filepath.Join(dir, "ok.txt")
			Expect(os.WriteFile(ok, []byte("ok"), 0o600)).To(Succeed())

			err := execute("read", "--workers", "2", "--no-progress", ok, filepath.Join(dir, "missing.txt"))

			Expect(err).To(MatchError(ContainSubstring("1 files could not be read")))
			Expect(stdout.String()).To(ContainSubstring("ERR"))
			Expect(stdout.String()).To(ContainSubstring("1 of 2 files failed"))
		})

		It("should reject an invalid configuration", func() {
			err := execute("read", "--order", "random", "--no-progress", filepath.Join(dir, "x"))

			Expect(err).To(MatchError(ContainSubstring("invalid configuration")))
		})
	})

	Context("token", func() {
		It("should sign a token the authenticator accepts", func() {
			err := execute("token", "--auth-secret", "s3cr3t", "--subject", "alice", "--ttl", "1m")

			Expect(err).NotTo(HaveOccurred())
			token := strings.TrimSpace(stdout.String())
			Expect(strings.Count(token, ".")).To(Equal(2))

			other, err := middlewares.NewToken([]byte("s3cr3t"), "alice", time.Minute)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Split(token, ".")[0]).To(Equal(strings.Split(other, ".")[0]))
		})

		It("should require a secret", func() {
			Expect(execute("token")).To(MatchError(ContainSubstring("no auth secret")))
		})
	})

	Context("history", func() {
		var records []models.TaskRecord

		BeforeEach(func() {
			base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			records = []models.TaskRecord{
				{
					ID:          "0b7f7f9e-3f1c-4a43-9d1e-2bd0c1e0a001",
					Name:        "load:a.txt",
					Outcome:     models.TaskOutcomeCompleted,
					Worker:      1,
					Resumes:     3,
					ScheduledAt: base,
					FinishedAt:  base.Add(1500 * time.Millisecond),
				},
				{
					ID:          "0b7f7f9e-3f1c-4a43-9d1e-2bd0c1e0a002",
					Name:        "load:b.txt",
					Outcome:     models.TaskOutcomeAbandoned,
					Worker:      -1,
					ScheduledAt: base,
					FinishedAt:  base,
				},
			}
		})

		It("should render a table", func() {
			Expect(renderHistoryTable(stdout, records)).To(Succeed())

			out := strings.ToLower(stdout.String())
			Expect(out).To(ContainSubstring("load:a.txt"))
			Expect(out).To(ContainSubstring("abandoned"))
			Expect(out).To(ContainSubstring("1.5s"))
		})

		It("should render YAML", func() {
			Expect(renderHistoryYAML(stdout, records)).To(Succeed())

			var entries []historyEntry
			Expect(yaml.Unmarshal(stdout.Bytes(), &entries)).To(Succeed())
			Expect(entries).To(HaveLen(2))
			Expect(entries[0].Outcome).To(Equal("completed"))
			Expect(entries[1].Worker).To(Equal(-1))
		})

		It("should export a workbook", func() {
			path := filepath.Join(dir, "history.xlsx")

			Expect(writeHistoryWorkbook(path, records)).To(Succeed())

			f, err := excelize.OpenFile(path)
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows(historySheet)
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(3))
			Expect(rows[0][0]).To(Equal("ID"))
			Expect(rows[1][1]).To(Equal("load:a.txt"))
			Expect(rows[1][7]).To(Equal("1500"))
		})

		// Given a history database filled by a read
		// When the history is listed from the same database
		// Then the read's task shows up as completed
		It("should list the tasks of a previous run", func() {
			// Arrange
			db := filepath.Join(dir, "history.duckdb")
			file := filepath.Join(dir, "a.txt")
			Expect(os.WriteFile(file, []byte("a"), 0o600)).To(Succeed())
			Expect(execute("read", "--db-path", db, "--workers", "0", "--no-progress", file)).To(Succeed())
			stdout.Reset()

			// Act
			err := execute("history", "list", "--db-path", db, "--output", "yaml")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			var entries []historyEntry
			Expect(yaml.Unmarshal(stdout.Bytes(), &entries)).To(Succeed())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Name).To(Equal(file))
			Expect(entries[0].Outcome).To(Equal("completed"))
			Expect(entries[0].Resumes).To(BeNumerically(">=", 3))
		})

		It("should reject an unknown output format", func() {
			err := execute("history", "list", "--output", "xml")

			Expect(err).To(MatchError(ContainSubstring("unknown output format")))
		})
	})

	It("should label workers", func() {
		Expect(workerLabel(-1)).To(Equal("-"))
		Expect(workerLabel(2)).To(Equal("2"))
	})
})
