package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpne/stages/internal/app/controllers"
	"github.com/cpne/stages/internal/app/models"
	"github.com/cpne/stages/internal/app/routes"
	"github.com/cpne/stages/internal/app/services"
	"github.com/cpne/stages/internal/pkg/apperrors"
	"github.com/cpne/stages/internal/pkg/filestorage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePlacement struct {
	periods   []*models.Period
	klasses   []*models.Klass
	students  []*models.EligibleStudent
	avails    []*models.AvailabilityView
	trainings []*models.TrainingView
	contacts  []*models.CorpContact
	err       error
	created   []services.CreateTrainingInput
	refID     *int64
}

func (f *fakePlacement) ListSections(context.Context) ([]*models.Section, error) {
	return []*models.Section{{ID: 1, Name: "MP_ASE"}}, f.err
}

func (f *fakePlacement) ListReferents(context.Context) ([]*models.Referent, error) {
	return []*models.Referent{{Teacher: models.Teacher{ID: 7, FirstName: "Paul", LastName: "Martin"}, NumRefs: 2}}, f.err
}

func (f *fakePlacement) ListPeriods(context.Context, int64) ([]*models.Period, error) {
	return f.periods, f.err
}

func (f *fakePlacement) ListClasses(context.Context, int64) ([]*models.Klass, error) {
	return f.klasses, f.err
}

func (f *fakePlacement) ListEligibleStudents(context.Context, int64) ([]*models.EligibleStudent, error) {
	return f.students, f.err
}

func (f *fakePlacement) ListAvailabilities(context.Context, int64) ([]*models.AvailabilityView, error) {
	return f.avails, f.err
}

func (f *fakePlacement) ListTrainings(context.Context, int64) ([]*models.TrainingView, error) {
	return f.trainings, f.err
}

func (f *fakePlacement) ListContacts(context.Context, int64) ([]*models.CorpContact, error) {
	return f.contacts, f.err
}

func (f *fakePlacement) CreateTraining(_ context.Context, in services.CreateTrainingInput) (*models.Training, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &models.Training{ID: 1, StudentID: in.StudentID, AvailabilityID: in.AvailabilityID}, nil
}

func (f *fakePlacement) DeleteTraining(context.Context, int64) (*int64, error) {
	return f.refID, f.err
}

type fakeWorkload struct{}

func (fakeWorkload) TeacherActivity(_ context.Context, id int64) (*services.TeacherWorkload, error) {
	if id != 1 {
		return nil, apperrors.NewResourceNotFoundError("Enseignant introuvable")
	}
	teacher := &models.Teacher{ID: 1, FirstName: "Jeanne", LastName: "Dubois", Rate: 50}
	courses := []*models.Course{
		{Subject: "#ASE Colloque", Period: 8, Imputation: models.ImputationASSCFE},
		{Subject: "Sém. enfance 2", Period: 4, Imputation: models.ImputationEDEpe},
	}
	activity := services.CalcActivity(teacher, courses, fakeWorkload{}.Limits())
	return &services.TeacherWorkload{
		Teacher: teacher, Activity: activity, Imputations: services.CalcImputations(courses, activity),
	}, nil
}

func (fakeWorkload) Limits() services.WorkloadLimits {
	return services.WorkloadLimits{MaxEnsPeriods: 1900, MaxEnsFormation: 250}
}

type fakeDocuments struct {
	periodID   *int64
	ids        []int64
	returnDate time.Time
}

func (f *fakeDocuments) file(name string) *services.File {
	return &services.File{Filename: name, ContentType: services.XLSXContentType, Data: []byte("PK")}
}

func (f *fakeDocuments) Stages(_ context.Context, periodID *int64) (*services.File, error) {
	f.periodID = periodID
	return f.file("stages_export_2024-11-15.xlsx"), nil
}

func (f *fakeDocuments) General(context.Context) (*services.File, error) {
	return f.file("general_export_2024-11-15.xlsx"), nil
}

func (f *fakeDocuments) Ortra(context.Context) (*services.File, error) {
	return f.file("ortra_export_2024-11-15.xlsx"), nil
}

func (f *fakeDocuments) Imputations(context.Context) (*services.File, error) {
	return f.file("Imputations_export_2024-11-15.xlsx"), nil
}

func (f *fakeDocuments) Archive(_ context.Context, ids []int64) (*services.File, error) {
	f.ids = ids
	return &services.File{Filename: services.ChargeSheetArchiveName, ContentType: "application/zip", Data: []byte("PK")}, nil
}

type fakeUpdateForms struct{ docs *fakeDocuments }

func (f fakeUpdateForms) Archive(_ context.Context, returnDate time.Time) (*services.File, error) {
	f.docs.returnDate = returnDate
	return &services.File{Filename: services.UpdateFormArchiveName, ContentType: "application/zip", Data: []byte("PK")}, nil
}

type fakeImporter struct {
	kind     services.ImportKind
	filename string
	content  string
	err      error
}

func (f *fakeImporter) Import(_ context.Context, kind services.ImportKind, filename string, r io.Reader) (*services.ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.kind, f.filename, f.content = kind, filename, string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &services.ImportResult{Created: 2, Errors: []string{"Ligne 3: numéro d'étudiant manquant ou invalide. Ligne ignorée"}}, nil
}

type fakeCandidates struct {
	subject    string
	err        error
	convoked   int64
	convokeErr error
}

func (f *fakeCandidates) ConvocationDraft(_ context.Context, id int64) (*services.Message, error) {
	if f.convokeErr != nil {
		return nil, f.convokeErr
	}
	return &services.Message{To: []string{"carl@example.org"}, Subject: services.ConvocationSubject, Body: "Messieurs,"}, nil
}

func (f *fakeCandidates) SendConvocation(_ context.Context, id int64, subject, _ string) (time.Time, error) {
	if f.convokeErr != nil {
		return time.Time{}, f.convokeErr
	}
	f.convoked = id
	return time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC), nil
}

func (f *fakeCandidates) SendConfirmation(_ context.Context, id int64, subject, _ string) (time.Time, error) {
	if f.err != nil {
		return time.Time{}, f.err
	}
	f.subject = subject
	return time.Date(2024, 11, 15, 10, 0, 0, 0, time.UTC), nil
}

type fakeAdmin struct {
	period *services.CreatePeriodInput
	avails *services.CreateAvailabilitiesInput
}

func (f *fakeAdmin) CreateKlass(_ context.Context, klass *models.Klass) error {
	klass.ID = 12
	return nil
}

func (f *fakeAdmin) DeleteKlass(context.Context, int64) error {
	return apperrors.NewConflictError("La classe contient encore des étudiants")
}

func (f *fakeAdmin) DeleteTeacher(context.Context, int64) error { return nil }

func (f *fakeAdmin) CreateCorporation(_ context.Context, in services.CreateCorporationInput) (*models.Corporation, error) {
	return &models.Corporation{ID: 3, Name: in.Name, PCode: in.PCode, City: in.City}, nil
}

func (f *fakeAdmin) DeleteCorporation(context.Context, int64) error { return nil }

func (f *fakeAdmin) SetStudentArchived(_ context.Context, id int64, archived bool) (*models.Student, error) {
	return &models.Student{ID: id, Archived: archived}, nil
}

func (f *fakeAdmin) CreatePeriod(_ context.Context, in services.CreatePeriodInput) (*models.Period, error) {
	f.period = &in
	return &models.Period{ID: 5, Title: in.Title, StartDate: in.StartDate, EndDate: in.EndDate}, nil
}

func (f *fakeAdmin) CreateAvailabilities(_ context.Context, in services.CreateAvailabilitiesInput) ([]*models.Availability, error) {
	f.avails = &in
	out := make([]*models.Availability, in.Count)
	for i := range out {
		out[i] = &models.Availability{ID: int64(100 + i)}
	}
	return out, nil
}

type fixture struct {
	router     *gin.Engine
	placement  *fakePlacement
	documents  *fakeDocuments
	importer   *fakeImporter
	candidates *fakeCandidates
	admin      *fakeAdmin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	storage, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		router:     gin.New(),
		placement:  &fakePlacement{},
		documents:  &fakeDocuments{},
		importer:   &fakeImporter{},
		candidates: &fakeCandidates{},
		admin:      &fakeAdmin{},
	}
	routes.SetupRouter(f.router, routes.Controllers{
		Placement: controllers.NewPlacementController(f.placement),
		Workload:  controllers.NewWorkloadController(fakeWorkload{}),
		Document:  controllers.NewDocumentController(f.documents, f.documents, fakeUpdateForms{f.documents}),
		Import:    controllers.NewImportController(f.importer, storage),
		Candidate: controllers.NewCandidateController(f.candidates),
		Admin:     controllers.NewAdminController(f.admin, time.UTC),
	})
	return f
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return f.do(req)
}

func TestAttribution(t *testing.T) {
	f := newFixture(t)

	w := f.get("/attribution/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"sections": [{"id": 1, "name": "MP_ASE"}],
		"referents": [{"id": 7, "name": "Martin Paul", "num_refs": 2}]
	}`, w.Body.String())
}

func TestSectionPeriods(t *testing.T) {
	f := newFixture(t)
	f.placement.periods = []*models.Period{{
		ID: 4, Title: "Stage de printemps",
		StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 4, 25, 0, 0, 0, 0, time.UTC),
	}}

	w := f.get("/section/1/periods/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": 4, "dates": "2025-03-03 - 2025-04-25", "title": "Stage de printemps"}]`, w.Body.String())
}

func TestSectionPeriods_EmptyAndErrors(t *testing.T) {
	f := newFixture(t)

	w := f.get("/section/1/periods/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	w = f.get("/section/abc/periods/")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.placement.err = apperrors.NewResourceNotFoundError("Filière 9 introuvable")
	w = f.get("/section/9/periods/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Filière 9 introuvable")
}

func TestSectionClasses(t *testing.T) {
	f := newFixture(t)
	f.placement.klasses = []*models.Klass{{ID: 2, Name: "2MPASE1"}, {ID: 3, Name: "3MPASE1"}}

	w := f.get("/section/1/classes/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[[2, "2MPASE1"], [3, "3MPASE1"]]`, w.Body.String())
}

func TestPeriodViews(t *testing.T) {
	f := newFixture(t)
	trainingID := int64(8)
	f.placement.students = []*models.EligibleStudent{
		{ID: 1, FirstName: "Alice", LastName: "Arnaud", KlassName: "2MPASE1", TrainingID: &trainingID},
		{ID: 2, FirstName: "Bob", LastName: "Bovet", KlassName: "2MPASE1"},
	}
	f.placement.avails = []*models.AvailabilityView{
		{ID: 10, CorporationID: 3, CorporationName: "Crèche Les Lutins", DomainName: "Petite enfance", Free: true, Priority: true},
	}
	f.placement.trainings = []*models.TrainingView{{
		ID: 8, StudentFirstName: "Alice", StudentLastName: "Arnaud", KlassName: "2MPASE1",
		CorporationName: "Crèche Les Lutins", DomainName: "Petite enfance", ReferentName: "Martin Paul",
	}}

	w := f.get("/period/4/students/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"id": 1, "name": "Arnaud Alice", "klass": "2MPASE1", "training_id": 8},
		{"id": 2, "name": "Bovet Bob", "klass": "2MPASE1", "training_id": null}
	]`, w.Body.String())

	w = f.get("/period/4/corporations/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": 10, "id_corp": 3, "corp_name": "Crèche Les Lutins", "domain": "Petite enfance", "free": true, "priority": true}]`, w.Body.String())

	w = f.get("/period/4/trainings/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": 8, "student": "Arnaud Alice", "klass": "2MPASE1", "corporation": "Crèche Les Lutins", "domain": "Petite enfance", "referent": "Martin Paul"}]`, w.Body.String())
}

func TestCorporationContacts(t *testing.T) {
	f := newFixture(t)
	f.placement.contacts = []*models.CorpContact{{ID: 5, FirstName: "Anne", LastName: "Dupond", Role: "Directrice", IsMain: true}}

	w := f.get("/corporation/3/contacts/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id": 5, "first_name": "Anne", "last_name": "Dupond", "role": "Directrice", "is_main": true}]`, w.Body.String())
}

func TestNewTraining(t *testing.T) {
	f := newFixture(t)

	w := f.postForm("/training/new/", url.Values{"student": {"1"}, "avail": {"10"}, "referent": {"7"}, "contact": {""}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	require.Len(t, f.placement.created, 1)
	in := f.placement.created[0]
	assert.Equal(t, int64(1), in.StudentID)
	assert.Equal(t, int64(10), in.AvailabilityID)
	require.NotNil(t, in.ReferentID)
	assert.Equal(t, int64(7), *in.ReferentID)
	assert.Nil(t, in.ContactID)
}

func TestNewTraining_Refused(t *testing.T) {
	f := newFixture(t)

	w := f.postForm("/training/new/", url.Values{"avail": {"10"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.postForm("/training/new/", url.Values{"student": {"1"}, "avail": {"10"}, "referent": {"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "Référent: "))

	f.placement.err = apperrors.NewConflictError("Cette disponibilité est déjà attribuée")
	w = f.postForm("/training/new/", url.Values{"student": {"1"}, "avail": {"10"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Cette disponibilité est déjà attribuée", w.Body.String())

	f.placement.err = errors.New("connection reset")
	w = f.postForm("/training/new/", url.Values{"student": {"1"}, "avail": {"10"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestDeleteTraining(t *testing.T) {
	f := newFixture(t)
	ref := int64(7)
	f.placement.refID = &ref

	w := f.postForm("/training/del/", url.Values{"pk": {"8"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ref_id": 7}`, w.Body.String())

	f.placement.refID = nil
	w = f.postForm("/training/del/", url.Values{"pk": {"8"}})
	assert.JSONEq(t, `{"ref_id": null}`, w.Body.String())

	w = f.postForm("/training/del/", url.Values{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTeacherActivity(t *testing.T) {
	f := newFixture(t)

	w := f.get("/teacher/1/activity/")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			Teacher          string `json:"teacher"`
			TotHyperPlanning int    `json:"tot_hyperplanning"`
			Activity         struct {
				TotPaid int `json:"tot_paid"`
			} `json:"activity"`
			Imputations []struct {
				Key     string `json:"key"`
				Periods int    `json:"periods"`
			} `json:"imputations"`
			TotImputations int `json:"tot_imputations"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Dubois Jeanne", body.Data.Teacher)
	assert.Equal(t, 12, body.Data.TotHyperPlanning)
	assert.Equal(t, 14, body.Data.Activity.TotPaid)
	assert.Equal(t, 14, body.Data.TotImputations)
	require.Len(t, body.Data.Imputations, len(services.ImputationKeys))
	assert.Equal(t, "ASSC", body.Data.Imputations[1].Key)
	assert.Equal(t, 9, body.Data.Imputations[1].Periods)

	assert.Equal(t, http.StatusNotFound, f.get("/teacher/2/activity/").Code)
}

func TestExports(t *testing.T) {
	f := newFixture(t)

	w := f.get("/stages/export/?period=4")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="stages_export_2024-11-15.xlsx"`, w.Header().Get("Content-Disposition"))
	require.NotNil(t, f.documents.periodID)
	assert.Equal(t, int64(4), *f.documents.periodID)

	f.get("/stages/export/?filter=6")
	require.NotNil(t, f.documents.periodID)
	assert.Equal(t, int64(6), *f.documents.periodID)

	f.get("/stages/export/")
	assert.Nil(t, f.documents.periodID)

	assert.Equal(t, http.StatusBadRequest, f.get("/stages/export/?period=abc").Code)

	for path, name := range map[string]string{
		"/students/export/general/":     "general_export_2024-11-15.xlsx",
		"/students/export/ortra/":       "ortra_export_2024-11-15.xlsx",
		"/teachers/export/imputations/": "Imputations_export_2024-11-15.xlsx",
	} {
		w := f.get(path)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Header().Get("Content-Disposition"), name)
	}
}

func TestChargeSheets(t *testing.T) {
	f := newFixture(t)

	w := f.get("/teachers/charge-sheets/?ids=1,2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Equal(t, []int64{1, 2}, f.documents.ids)

	assert.Equal(t, http.StatusBadRequest, f.get("/teachers/charge-sheets/").Code)
	assert.Equal(t, http.StatusBadRequest, f.get("/teachers/charge-sheets/?ids=1,x").Code)
}

func TestUpdateForms(t *testing.T) {
	f := newFixture(t)

	w := f.get("/klasses/update-forms/?date=02.12.2024")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/zip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), services.UpdateFormArchiveName)
	assert.Equal(t, time.Date(2024, 12, 2, 0, 0, 0, 0, time.UTC), f.documents.returnDate)

	w = f.get("/klasses/update-forms/")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "La date fournie n'est pas valable")
	assert.Equal(t, http.StatusBadRequest, f.get("/klasses/update-forms/?date=2024-12-02").Code)
}

func upload(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("upload", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport(t *testing.T) {
	f := newFixture(t)

	w := f.do(upload(t, "/import/students/", "eleves.csv", "NO_CLOEE;NOM\n1;Arnaud\n"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.ImportStudents, f.importer.kind)
	assert.Equal(t, "eleves.csv", f.importer.filename)
	assert.Equal(t, "NO_CLOEE;NOM\n1;Arnaud\n", f.importer.content)

	var body struct {
		Data services.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Data.Created)
	assert.Len(t, body.Data.Errors, 1)

	f.do(upload(t, "/import/hp/", "hp.csv", "x"))
	assert.Equal(t, services.ImportHP, f.importer.kind)
	f.do(upload(t, "/import/hp-contacts/", "contacts.csv", "x"))
	assert.Equal(t, services.ImportHPContacts, f.importer.kind)
}

func TestImport_Failures(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/import/students/", strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusBadRequest, f.do(req).Code)

	f.importer.err = apperrors.NewImportError("L'importation a échoué. Erreur: colonnes manquantes: NOM")
	w := f.do(upload(t, "/import/students/", "eleves.csv", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "L'importation a échoué. Erreur: colonnes manquantes: NOM")
	assert.Contains(t, w.Body.String(), "content-type: application/octet-stream")
}

func TestCandidateConfirmation(t *testing.T) {
	f := newFixture(t)

	w := f.postJSON("/candidate/3/confirmation/", `{"subject": "Inscription", "body": "Bonjour"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent_at":"2024-11-15T10:00:00Z"`)
	assert.Equal(t, "Inscription", f.candidates.subject)

	assert.Equal(t, http.StatusBadRequest, f.postJSON("/candidate/3/confirmation/", `{"subject": "x"}`).Code)

	f.candidates.err = apperrors.NewTransportError("Échec d’envoi pour Zaugg Zoé (refused)", errors.New("refused"))
	w = f.postJSON("/candidate/3/confirmation/", `{"subject": "Inscription", "body": "Bonjour"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Échec d’envoi pour Zaugg Zoé")
}

func TestConvocation(t *testing.T) {
	f := newFixture(t)

	w := f.get("/student/4/convocation/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.ConvocationSubject)

	w = f.postJSON("/student/4/convocation/", `{"subject": "Convocation", "body": "Messieurs,"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent_at":"2025-05-20T08:00:00Z"`)
	assert.Equal(t, int64(4), f.candidates.convoked)

	f.candidates.convokeErr = apperrors.NewCustomError(apperrors.ErrValidationFailed, "La date d’examen est manquante")
	w = f.get("/student/4/convocation/")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "La date d’examen est manquante")
	w = f.postJSON("/student/4/convocation/", `{"subject": "Convocation", "body": "Messieurs,"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdmin(t *testing.T) {
	f := newFixture(t)

	w := f.postJSON("/admin/klasses/", `{"name": "3MPASE1", "section_id": 1, "level_id": 3}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"id":12`)

	w = f.do(httptest.NewRequest(http.MethodDelete, "/admin/klasses/12/", nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.postJSON("/admin/corporations/", `{"name": "Crèche", "pcode": "2300", "city": "La Chaux-de-Fonds", "email": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.postJSON("/admin/students/4/archive/", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = f.postJSON("/admin/students/4/archive/", `{"archived": false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"archived":false`)
}

func TestAdmin_CreatePeriodDates(t *testing.T) {
	f := newFixture(t)

	w := f.postJSON("/admin/periods/", `{"title": "Stage", "section_id": 1, "level_id": 2, "start_date": "01.09.2025", "end_date": "2025-10-24"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, f.admin.period)

	w = f.postJSON("/admin/periods/", `{"title": "Stage", "section_id": 1, "level_id": 2, "start_date": "2025-09-01", "end_date": "2025-10-24"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, f.admin.period)
	assert.Equal(t, time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), f.admin.period.StartDate)

	w = f.postJSON("/admin/availabilities/", `{"corporation_id": 3, "period_id": 5, "domain_id": 1, "count": 2}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `[100, 101]`, mustField(t, w.Body.Bytes(), "ids"))
}

func mustField(t *testing.T, body []byte, field string) string {
	t.Helper()
	var envelope struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))
	return string(envelope.Data[field])
}
