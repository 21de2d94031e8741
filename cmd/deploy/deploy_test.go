package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiffhq/skiff/core/pipeline"
)

func TestDeployStagesOf(t *testing.T) {
	t.Run("should keep only deploy stages and clear their needs", func(t *testing.T) {
		p := &pipeline.Pipeline{
			Name: "analytics-ci",
			Stages: []*pipeline.Stage{
				{Name: "test", Kind: pipeline.StageKindExec},
				{
					Name:  "deploy",
					Kind:  pipeline.StageKindDeploy,
					Needs: []string{"test"},
					Deploy: &pipeline.DeploySpec{
						DestinationDir: "/Users/user@example.com",
						Jobs:           []int64{12345},
					},
				},
			},
		}

		reduced, err := deployStagesOf(p)

		require.NoError(t, err)
		require.Len(t, reduced.Stages, 1)
		assert.Equal(t, "deploy", reduced.Stages[0].Name)
		assert.Empty(t, reduced.Stages[0].Needs)
		assert.Equal(t, []int64{12345}, reduced.Stages[0].Deploy.Jobs)
	})

	t.Run("should fail when the pipeline has no deploy stage", func(t *testing.T) {
		p := &pipeline.Pipeline{
			Name: "checks-only",
			Stages: []*pipeline.Stage{
				{Name: "test", Kind: pipeline.StageKindExec},
			},
		}

		reduced, err := deployStagesOf(p)

		assert.Error(t, err)
		assert.Nil(t, reduced)
	})
}
