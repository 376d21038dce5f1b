package ingestion

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/terra-clan/readiness-engine/internal/catalog"
	"github.com/terra-clan/readiness-engine/internal/models"
)

func TestParseScenariosCSV(t *testing.T) {
	in := `Role,Title,Task,Difficulty,Requirements,Deliverables
backend,Rate limiter,"Build a limiter","","Token bucket, Per client",Code
,,,,,
frontend,Landing page,Build a page,Intermediate,,
`
	got, err := ParseScenariosCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "backend", got[0].Role)
	assert.Equal(t, models.DefaultDifficulty, got[0].Difficulty)
	assert.Equal(t, []string{"Token bucket", "Per client"}, got[0].Requirements)
	assert.Equal(t, []string{"Code"}, got[0].Deliverables)
	assert.Equal(t, "intermediate", got[1].Difficulty)
	assert.Empty(t, got[1].Requirements)
}

func TestParseScenariosCSVMissingColumn(t *testing.T) {
	_, err := ParseScenariosCSV(strings.NewReader("role,title\nbackend,x\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestParseEmptyCSV(t *testing.T) {
	got, err := ParseResourcesCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseResourcesCSV(t *testing.T) {
	in := "title,type,description,url,skills\nSQL Basics,course,Intro to SQL,https://example.com,\"sql, databases\"\n"
	got, err := ParseResourcesCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "SQL Basics", got[0].Title)
	assert.Equal(t, "sql, databases", got[0].Skills)
}

func TestSQLSourceWatermark(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	src := NewSQLSource(db, 10)

	mock.ExpectQuery("SELECT\\s+id, role, title").
		WithArgs(int64(0), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "title", "task", "difficulty", "context", "requirements", "deliverables", "criteria"}).
			AddRow(int64(4), "backend", "Queue worker", "Build a worker", nil, "jobs", "Retries, Backoff", nil, nil).
			AddRow(int64(7), "backend", "Cache layer", "Add caching", "advanced", nil, nil, nil, nil))
	mock.ExpectQuery("SELECT\\s+id, title, type").
		WithArgs(int64(0), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type", "description", "url", "skills"}).
			AddRow(int64(2), "Redis in Action", "book", nil, nil, "caching"))

	batch, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Scenarios, 2)
	assert.Equal(t, "sql-4", batch.Scenarios[0].ID)
	assert.Equal(t, models.DefaultDifficulty, batch.Scenarios[0].Difficulty)
	assert.Equal(t, []string{"Retries", "Backoff"}, batch.Scenarios[0].Requirements)
	assert.Equal(t, "advanced", batch.Scenarios[1].Difficulty)
	require.Len(t, batch.Resources, 1)

	mock.ExpectQuery("SELECT\\s+id, role, title").
		WithArgs(int64(7), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role", "title", "task", "difficulty", "context", "requirements", "deliverables", "criteria"}))
	mock.ExpectQuery("SELECT\\s+id, title, type").
		WithArgs(int64(2), 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "type", "description", "url", "skills"}))

	batch, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, batch.Empty())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLSourceQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection reset"))

	_, err = NewSQLSource(db, 0).Fetch(context.Background())
	assert.Error(t, err)
}

type fakeBucket struct {
	objects map[string]string
	etags   map[string]string
	calls   int
}

func (f *fakeBucket) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	key := aws.ToString(in.Key)
	body, ok := f.objects[key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(body)),
		ETag: aws.String(f.etags[key]),
	}, nil
}

func TestS3SourceSkipsUnchangedObjects(t *testing.T) {
	bucket := &fakeBucket{
		objects: map[string]string{
			"scenarios.csv": "role,title,task\nbackend,A,Do A\n",
			"resources.csv": "title\nGo by Example\n",
		},
		etags: map[string]string{"scenarios.csv": `"v1"`, "resources.csv": `"r1"`},
	}
	src := NewS3SourceWithClient(bucket, "catalog", "scenarios.csv", "resources.csv")

	batch, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Scenarios, 1)
	assert.Len(t, batch.Resources, 1)

	batch, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, batch.Empty())

	bucket.objects["scenarios.csv"] = "role,title,task\nbackend,A,Do A\nbackend,B,Do B\n"
	bucket.etags["scenarios.csv"] = `"v2"`

	batch, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Scenarios, 2)
	assert.Empty(t, batch.Resources)
}

func TestS3SourceMissingObject(t *testing.T) {
	src := NewS3SourceWithClient(&fakeBucket{}, "catalog", "scenarios.csv", "")
	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

type staticSource struct {
	name  string
	batch Batch
	err   error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) Fetch(context.Context) (Batch, error) { return s.batch, s.err }

func TestPollIsolatesFailingSource(t *testing.T) {
	store := catalog.NewStore()
	good := staticSource{name: "good", batch: Batch{
		Scenarios: []models.Scenario{{ID: "s1", Role: "backend", Title: "A", Task: "Do A"}},
		Resources: []models.TrainingResource{{Title: "Go Tour"}},
	}}
	bad := staticSource{name: "bad", err: errors.New("down")}

	p := NewPoller(store, time.Hour, bad, good)
	scenarios, resources := p.Poll(context.Background())

	assert.Equal(t, 1, scenarios)
	assert.Equal(t, 1, resources)
	assert.Equal(t, catalog.Stats{Scenarios: 1, Resources: 1, ScenarioRoles: map[string]int{"backend": 1}}, store.Stats())
}

func TestPollerStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p := NewPoller(catalog.NewStore(), 10*time.Millisecond)
	go func() {
		p.run(ctx)
		close(done)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()
	<-done
}
