package registrar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/host/hosttest"
	"github.com/helmwire/helmwire/pkg/resource"
)

func TestInstallChartRegistersDeployable(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:  "vault",
		Chart: "hashicorp/vault",
	})
	require.NoError(t, err)

	dep := rec.Deployable("vault")
	require.NotNil(t, dep)
	assert.Equal(t,
		"set -ex;\n"+
			"helm upgrade --install vault hashicorp/vault 1>&2;\n"+
			"helm get manifest vault | kubectl get -oyaml -f -",
		dep.ApplyCmd)
	assert.Equal(t, "helm uninstall vault || true", dep.DeleteCmd)
	assert.True(t, dep.AutoInit)

	// No metadata declared, so no attach calls go out.
	assert.Equal(t, []string{"RegisterDeployable"}, rec.Calls())
}

func TestInstallChartAttachesMetadataInOrder(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:         "app",
		Chart:        "./chart",
		ResourceDeps: []string{"db", "cache"},
		Labels:       []string{"backend"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"RegisterDeployable", "AttachDependencies", "AttachLabels"}, rec.Calls())
	assert.Equal(t, []string{"db", "cache"}, rec.Dependencies["app"])
	assert.Equal(t, []string{"backend"}, rec.Labels["app"])
}

func TestInstallChartPassesThroughHostFields(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	ignore := "ignore"
	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:         "app",
		Chart:        "./chart",
		FileDeps:     []string{"./chart", "values.yaml"},
		PodReadiness: ignore,
		PortForwards: []string{"8080:80"},
		LiveUpdate: []resource.LiveUpdateStep{
			{Sync: &resource.SyncStep{LocalPath: "./src", ContainerPath: "/app"}},
		},
	})
	require.NoError(t, err)

	dep := rec.Deployable("app")
	require.NotNil(t, dep)
	assert.Equal(t, []string{"./chart", "values.yaml"}, dep.FileDeps)
	assert.Equal(t, ignore, dep.PodReadiness)
	assert.Equal(t, []string{"8080:80"}, dep.PortForwards)
	require.Len(t, dep.LiveUpdate, 1)
	assert.Equal(t, "/app", dep.LiveUpdate[0].Sync.ContainerPath)
}

func TestInstallChartAutoInitFalseSurvives(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	off := false
	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:     "app",
		Chart:    "./chart",
		AutoInit: &off,
	})
	require.NoError(t, err)

	dep := rec.Deployable("app")
	require.NotNil(t, dep)
	assert.False(t, dep.AutoInit)
}

func TestInstallChartBindingMismatchRejectedBeforeHostCalls(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:      "app",
		Chart:     "./chart",
		ImageDeps: []string{"one", "two"},
		ImageKeys: resource.KeyList{resource.SingleKey("image")},
	})
	require.Error(t, err)
	assert.Equal(t, hwerrors.ErrCodeInvalidResource, hwerrors.CodeOf(err))
	assert.Empty(t, rec.Calls())
}

func TestInstallChartBadKeyShapeRejectedBeforeHostCalls(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:      "app",
		Chart:     "./chart",
		ImageDeps: []string{"one"},
		ImageKeys: resource.KeyList{nil},
	})
	require.Error(t, err)
	assert.Equal(t, hwerrors.ErrCodeInvalidImageKey, hwerrors.CodeOf(err))
	assert.Empty(t, rec.Calls())
}

func TestInstallChartRegisterErrorStopsMetadata(t *testing.T) {
	rec := hosttest.NewRecorder()
	boom := errors.New("host down")
	rec.RegisterDeployableErr = boom
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:         "app",
		Chart:        "./chart",
		ResourceDeps: []string{"db"},
		Labels:       []string{"backend"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"RegisterDeployable"}, rec.Calls())
}

func TestInstallChartAttachDependenciesErrorStopsLabels(t *testing.T) {
	rec := hosttest.NewRecorder()
	boom := errors.New("attach failed")
	rec.AttachDependenciesErr = boom
	r := New(rec)

	err := r.InstallChart(context.Background(), resource.ChartResource{
		Name:         "app",
		Chart:        "./chart",
		ResourceDeps: []string{"db"},
		Labels:       []string{"backend"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"RegisterDeployable", "AttachDependencies"}, rec.Calls())
}

func TestAddRepoRegistersTask(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.AddRepo(context.Background(), resource.Repo{
		Name: "bitnami",
		URL:  "https://charts.bitnami.com/bitnami",
	})
	require.NoError(t, err)

	task := rec.Task("bitnami")
	require.NotNil(t, task)
	assert.Equal(t,
		[]string{"helm", "repo", "add", "bitnami", "https://charts.bitnami.com/bitnami", "--force-update"},
		task.Argv)
	assert.True(t, task.AllowParallel)
}

func TestAddRepoResourceNameOverride(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.AddRepo(context.Background(), resource.Repo{
		Name:         "bitnami",
		URL:          "https://charts.bitnami.com/bitnami",
		ResourceName: "bitnami-repo",
	})
	require.NoError(t, err)

	assert.Nil(t, rec.Task("bitnami"))
	assert.NotNil(t, rec.Task("bitnami-repo"))
}

func TestAddRepoInvalidSpecRejectedBeforeHostCalls(t *testing.T) {
	rec := hosttest.NewRecorder()
	r := New(rec)

	err := r.AddRepo(context.Background(), resource.Repo{Name: "bitnami"})
	require.Error(t, err)
	assert.Equal(t, hwerrors.ErrCodeInvalidResource, hwerrors.CodeOf(err))
	assert.Empty(t, rec.Calls())
}

func TestAddRepoRegisterErrorPropagates(t *testing.T) {
	rec := hosttest.NewRecorder()
	boom := errors.New("host down")
	rec.RegisterTaskErr = boom
	r := New(rec)

	err := r.AddRepo(context.Background(), resource.Repo{
		Name: "bitnami",
		URL:  "https://charts.bitnami.com/bitnami",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}
