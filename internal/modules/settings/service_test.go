package settings

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/rfitrainer/internal/database"
	"github.com/aristath/rfitrainer/internal/domain"
	testingutil "github.com/aristath/rfitrainer/internal/testing"
)

func newTestService(t *testing.T) *Service {
	db, _ := testingutil.NewTestDB(t, database.NameConfig)
	return NewService(NewRepository(db.Conn(), zerolog.Nop()), zerolog.Nop())
}

func TestSettingDefaults_HaveDescriptions(t *testing.T) {
	for key := range SettingDefaults {
		assert.NotEmpty(t, SettingDescriptions[key], "missing description for %s", key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	svc := newTestService(t)

	us, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultUserSettings(), us)
	assert.Len(t, us.EnabledPositions, 7)
	assert.Equal(t, domain.ModeBoundary, us.Mode)
	assert.True(t, us.QuestionCount.Infinite())
	assert.Equal(t, ThemeDark, us.Theme)
}

func TestSave_RoundTrip(t *testing.T) {
	svc := newTestService(t)

	saved, err := svc.Save(UserSettings{
		EnabledPositions: []domain.Position{domain.PositionSB, domain.PositionBTN},
		Mode:             domain.ModeReview,
		QuestionCount:    25,
		Theme:            ThemeLight,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.Position{domain.PositionBTN, domain.PositionSB}, saved.EnabledPositions)
	assert.Equal(t, domain.ModeReview, saved.Mode)
	assert.Equal(t, QuestionCount(25), saved.QuestionCount)

	loaded, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestSave_EmptyPositionsMeansAll(t *testing.T) {
	svc := newTestService(t)

	us := DefaultUserSettings()
	us.EnabledPositions = nil
	saved, err := svc.Save(us)
	require.NoError(t, err)
	assert.Empty(t, saved.EnabledPositions)

	active := saved.Session().ActivePositions(domain.AllPositions)
	assert.Equal(t, domain.AllPositions, active)
}

func TestSave_RejectsInvalid(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*UserSettings)
	}{
		{"unknown mode", func(u *UserSettings) { u.Mode = "hardest" }},
		{"unknown position", func(u *UserSettings) { u.EnabledPositions = []domain.Position{"RFI_BB"} }},
		{"duplicate position", func(u *UserSettings) {
			u.EnabledPositions = []domain.Position{domain.PositionCO, domain.PositionCO}
		}},
		{"negative count", func(u *UserSettings) { u.QuestionCount = -1 }},
		{"unknown theme", func(u *UserSettings) { u.Theme = "solarized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := DefaultUserSettings()
			tt.mutate(&us)
			_, err := svc.Save(us)
			assert.Error(t, err)
		})
	}

	us, err := svc.Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultUserSettings(), us)
}

func TestTogglePosition(t *testing.T) {
	svc := newTestService(t)

	us, err := svc.TogglePosition(domain.PositionUTG)
	require.NoError(t, err)
	assert.NotContains(t, us.EnabledPositions, domain.PositionUTG)
	assert.Len(t, us.EnabledPositions, 6)

	us, err = svc.TogglePosition(domain.PositionUTG)
	require.NoError(t, err)
	assert.Equal(t, domain.AllPositions, us.EnabledPositions)

	_, err = svc.TogglePosition("RFI_BB")
	assert.Error(t, err)
}

func TestSetMode(t *testing.T) {
	svc := newTestService(t)

	us, err := svc.SetMode(domain.ModeRandom)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeRandom, us.Mode)

	_, err = svc.SetMode("sideways")
	assert.Error(t, err)
}

func TestSetAndGet_Typed(t *testing.T) {
	svc := newTestService(t)

	require.NoError(t, svc.Set(KeyR2BucketName, "trainer-backups"))
	require.NoError(t, svc.Set(KeyR2BackupEnabled, true))
	require.NoError(t, svc.Set(KeyR2RetentionDays, "14"))

	bucket, err := svc.GetString(KeyR2BucketName)
	require.NoError(t, err)
	assert.Equal(t, "trainer-backups", bucket)

	enabled, err := svc.GetFloat(KeyR2BackupEnabled)
	require.NoError(t, err)
	assert.Equal(t, 1.0, enabled)

	days, err := svc.GetFloat(KeyR2RetentionDays)
	require.NoError(t, err)
	assert.Equal(t, 14.0, days)

	assert.Error(t, svc.Set("not_a_setting", "x"))
	assert.Error(t, svc.Set(KeyMode, "sideways"))
	assert.Error(t, svc.Set(KeyR2RetentionDays, "-1"))
	assert.Error(t, svc.Set(KeyTheme, 3.0))
}

func TestGetAll_MasksSecrets(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, svc.Set(KeyR2SecretAccessKey, "super-secret"))

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Equal(t, "********", all[KeyR2SecretAccessKey])
	assert.Equal(t, "", all[KeyR2AccessKeyID])
	assert.Equal(t, string(domain.ModeBoundary), all[KeyMode])
}

func TestQuestionCount_JSON(t *testing.T) {
	data, err := json.Marshal(DefaultUserSettings())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"questionCount":"infinite"`)

	var us UserSettings
	require.NoError(t, json.Unmarshal([]byte(`{"questionCount":20}`), &us))
	assert.Equal(t, QuestionCount(20), us.QuestionCount)

	require.NoError(t, json.Unmarshal([]byte(`{"questionCount":"infinite"}`), &us))
	assert.True(t, us.QuestionCount.Infinite())

	assert.Error(t, json.Unmarshal([]byte(`{"questionCount":-3}`), &us))
	assert.Error(t, json.Unmarshal([]byte(`{"questionCount":"lots"}`), &us))
}

func TestRepository_GetBool(t *testing.T) {
	db, _ := testingutil.NewTestDB(t, database.NameConfig)
	repo := NewRepository(db.Conn(), zerolog.Nop())

	v, err := repo.GetBool(KeyR2BackupEnabled, false)
	require.NoError(t, err)
	assert.False(t, v)

	require.NoError(t, repo.Set(KeyR2BackupEnabled, "1.0", nil))
	v, err = repo.GetBool(KeyR2BackupEnabled, false)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, repo.Delete(KeyR2BackupEnabled))
	got, err := repo.Get(KeyR2BackupEnabled)
	require.NoError(t, err)
	assert.Nil(t, got)
}
