package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/dirk.krummacker/contactbook/internal/config"
	"gitlab.com/dirk.krummacker/contactbook/internal/service"
	"gitlab.com/dirk.krummacker/contactbook/internal/store"
	"go.uber.org/zap"
)

// contactColumns are the columns of the contacts table in schema order.
var contactColumns = []string{"id", "firstName", "lastName", "email", "phoneNumber", "address", "profileImageId"}

const (
	johnDoeJSON = `{
		"firstName": "John",
		"lastName": "Doe",
		"email": "john.doe@example.com",
		"phoneNumber": {"countryCode": "+1", "number": "5551234"},
		"address": {"street": "1 Main St", "state": "CA", "country": "US", "zipCode": "90001",
			"geocode": {"longitude": -118.24, "latitude": 34.05}}
	}`
	johnDoePhone   = `{"countryCode":"+1","number":"5551234"}`
	johnDoeAddress = `{"street":"1 Main St","state":"CA","country":"US","zipCode":"90001","geocode":{"longitude":-118.24,"latitude":34.05}}`
)

var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

// envelope is the decoded response body.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// contact is the part of a returned contact that the tests look at.
type contact struct {
	Id          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber struct {
		Number string `json:"number"`
	} `json:"phoneNumber"`
}

// createMockObjects builds a mock database handle and a mock object for defining our expected SQL
// calls.
func createMockObjects(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	return db, mock
}

// expectPreparedStatements instructs the mock object to expect that several statements are being
// prepared.
func expectPreparedStatements(mock sqlmock.Sqlmock) {
	mock.ExpectPrepare("INSERT INTO contacts")
	mock.ExpectPrepare("SELECT \\* FROM contacts")
	mock.ExpectPrepare("SELECT \\* FROM contacts WHERE id = ?")
	mock.ExpectPrepare("DELETE FROM contacts WHERE id = ?")
	mock.ExpectPrepare("INSERT INTO images")
	mock.ExpectPrepare("SELECT \\* FROM images WHERE id = ?")
}

// expectSingleRowSelect instructs the mock object to expect that a select statement for a single
// contact will be executed.
func expectSingleRowSelect(mock sqlmock.Sqlmock, id string, firstName string, lastName string) {
	rows := mock.NewRows(contactColumns).
		AddRow(id, firstName, lastName, "john.doe@example.com", johnDoePhone, johnDoeAddress, nil)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = ?").
		WithArgs(id).
		WillReturnRows(rows)
}

func testConfig() config.Config {
	return config.Config{
		APIPrefix:       "/api",
		CORSAllowOrigin: "http://localhost:5173",
		GinLogging:      "off",
		MaxImageBytes:   1024,
	}
}

// fixedID always mints the same id.
func fixedID() string {
	return "c-1"
}

// initializeContactsService sets up the contacts service with the mock database and returns a
// handle to the gin engine against which requests can be executed.
func initializeContactsService(t *testing.T, db *sql.DB) *gin.Engine {
	s, err := store.NewSQLStore(sqlx.NewDb(db, "mysql"))
	require.NoError(t, err)
	gin.SetMode(gin.ReleaseMode)
	svc := service.New(s, s, zap.NewNop(), service.WithIDGenerator(fixedID))
	return SetupHttpRouter(svc, testConfig(), zap.NewNop())
}

// initializeMemoryService sets up the contacts service without a database.
func initializeMemoryService(cfg config.Config) *gin.Engine {
	m := store.NewMemoryStore()
	gin.SetMode(gin.ReleaseMode)
	return SetupHttpRouter(service.New(m, m, zap.NewNop()), cfg, zap.NewNop())
}

// runTest executes the HTTP request with the specified arguments and returns the response.
func runTest(router *gin.Engine, method string, url string, body io.Reader) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	if body == nil {
		body = strings.NewReader("")
	}
	request, _ := http.NewRequest(method, url, body)
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	return recorder
}

// runUpload posts a multipart form with the given field and content.
func runUpload(router *gin.Engine, field string, data []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile(field, "portrait.png")
	part.Write(data)
	writer.Close()

	recorder := httptest.NewRecorder()
	request, _ := http.NewRequest("POST", "/api/contact/image", &body)
	request.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(recorder, request)
	return recorder
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) envelope {
	t.Helper()
	var response envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response), recorder.Body.String())
	return response
}

func decodeContact(t *testing.T, response envelope) contact {
	t.Helper()
	var c contact
	require.NoError(t, json.Unmarshal(response.Data, &c))
	return c
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

// TestGetAll executes a GET request for all contacts in the database. It expects that the JSON
// for a list of contacts is returned.
func TestGetAll(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	// Define expectations on SQL statements
	expectPreparedStatements(mock)
	rows := mock.NewRows(contactColumns).
		AddRow("a", "Aaron", "A", "a@a.cz", johnDoePhone, johnDoeAddress, nil).
		AddRow("b", "Berta", "B", "b@b.cz", johnDoePhone, johnDoeAddress, "img-1")
	mock.ExpectQuery("SELECT \\* FROM contacts").
		WillReturnRows(rows)

	// Run test and compare results
	recorder := runTest(initializeContactsService(t, db), "GET", "/api/contacts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	response := decode(t, recorder)
	assert.True(t, response.Success)
	var contacts []contact
	require.NoError(t, json.Unmarshal(response.Data, &contacts))
	require.Len(t, contacts, 2)
	assert.Equal(t, "Aaron", contacts[0].FirstName)
	assert.Equal(t, "5551234", contacts[0].PhoneNumber.Number)
	assert.Equal(t, "Berta", contacts[1].FirstName)

	expectationsMet(t, mock)
}

// TestGetAllEmpty expects an empty list, not a missing one.
func TestGetAllEmpty(t *testing.T) {
	recorder := runTest(initializeMemoryService(testConfig()), "GET", "/api/contacts", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"success": true, "data": []}`, recorder.Body.String())
}

// TestGet executes a GET request for a single contact.
func TestGet(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	expectSingleRowSelect(mock, "c-7", "Erika", "Mustermann")

	recorder := runTest(initializeContactsService(t, db), "GET", "/api/contact/c-7", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	c := decodeContact(t, decode(t, recorder))
	assert.Equal(t, "c-7", c.Id)
	assert.Equal(t, "Mustermann", c.LastName)

	expectationsMet(t, mock)
}

// TestCreate posts a complete contact and expects it back with its new id.
func TestCreate(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectExec("INSERT INTO contacts").
		WithArgs("c-1", "John", "Doe", "john.doe@example.com", johnDoePhone, johnDoeAddress, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))

	recorder := runTest(initializeContactsService(t, db), "POST", "/api/contact", strings.NewReader(johnDoeJSON))
	assert.Equal(t, http.StatusCreated, recorder.Code)

	response := decode(t, recorder)
	assert.True(t, response.Success)
	c := decodeContact(t, response)
	assert.Equal(t, "c-1", c.Id)
	assert.Equal(t, "John", c.FirstName)

	expectationsMet(t, mock)
}

// TestCreateInvalid expects a validation message for the first invalid field and no database
// access.
func TestCreateInvalid(t *testing.T) {
	tests := []struct {
		body    string
		message string
	}{
		{`{"firstName": ""}`, `"firstName" is required`},
		{`{"firstName": 5}`, `"firstName" must be a string`},
		{`{"firstName": "John"`, `invalid JSON`},
		{``, `invalid JSON`},
		{strings.Replace(johnDoeJSON, `"john.doe@example.com"`, `"john.doe"`, 1), `"email" must be a valid email`},
		{strings.Replace(johnDoeJSON, `"latitude": 34.05`, `"latitude": "north"`, 1), `"address.geocode.latitude" must be a number`},
		{strings.Replace(johnDoeJSON, `"longitude": -118.24, `, ``, 1), `"address.geocode.longitude" is required`},
	}
	for _, test := range tests {
		db, mock := createMockObjects(t)
		expectPreparedStatements(mock)

		recorder := runTest(initializeContactsService(t, db), "POST", "/api/contact", strings.NewReader(test.body))
		assert.Equal(t, http.StatusBadRequest, recorder.Code, test.body)
		response := decode(t, recorder)
		assert.False(t, response.Success)
		assert.Equal(t, test.message, response.Message)

		expectationsMet(t, mock)
		db.Close()
	}
}

// TestUpdate changes the first name of an existing contact and expects the merged contact back.
func TestUpdate(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	expectSingleRowSelect(mock, "c-7", "John", "Doe")
	mock.ExpectExec("UPDATE contacts SET firstName=\\? WHERE id=\\?").
		WithArgs("Jane", "c-7").
		WillReturnResult(sqlmock.NewResult(-1, 1))

	recorder := runTest(initializeContactsService(t, db), "PUT", "/api/contact/c-7", strings.NewReader(`{"firstName": "Jane"}`))
	assert.Equal(t, http.StatusOK, recorder.Code)
	c := decodeContact(t, decode(t, recorder))
	assert.Equal(t, "Jane", c.FirstName)
	assert.Equal(t, "Doe", c.LastName)
	assert.Equal(t, "5551234", c.PhoneNumber.Number)

	expectationsMet(t, mock)
}

// TestUpdateNotFound expects 404 for an id that does not exist.
func TestUpdateNotFound(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM contacts WHERE id = ?").
		WithArgs("nonexistent-id").
		WillReturnRows(mock.NewRows(contactColumns))

	recorder := runTest(initializeContactsService(t, db), "PUT", "/api/contact/nonexistent-id", strings.NewReader(`{"firstName": "Jane"}`))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	response := decode(t, recorder)
	assert.False(t, response.Success)
	assert.Equal(t, "Contact not found", response.Message)

	expectationsMet(t, mock)
}

// TestUpdateInvalid expects that a partial phone number is rejected.
func TestUpdateInvalid(t *testing.T) {
	recorder := runTest(initializeMemoryService(testConfig()), "PUT", "/api/contact/c-7",
		strings.NewReader(`{"phoneNumber": {"countryCode": "+49"}}`))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, `"phoneNumber.number" is required`, decode(t, recorder).Message)
}

// TestDelete deletes an existing contact and expects it back.
func TestDelete(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	expectSingleRowSelect(mock, "c-7", "John", "Doe")
	mock.ExpectExec("DELETE FROM contacts WHERE id = ?").
		WithArgs("c-7").
		WillReturnResult(sqlmock.NewResult(-1, 1))

	recorder := runTest(initializeContactsService(t, db), "DELETE", "/api/contact/c-7", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	c := decodeContact(t, decode(t, recorder))
	assert.Equal(t, "c-7", c.Id)
	assert.Equal(t, "John", c.FirstName)

	expectationsMet(t, mock)
}

// TestDatabaseFailure expects a generic 500 response that does not reveal the cause.
func TestDatabaseFailure(t *testing.T) {
	db, mock := createMockObjects(t)
	defer db.Close()

	expectPreparedStatements(mock)
	mock.ExpectQuery("SELECT \\* FROM contacts").
		WillReturnError(sql.ErrConnDone)

	recorder := runTest(initializeContactsService(t, db), "GET", "/api/contacts", nil)
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"success": false, "message": "Internal server error"}`, recorder.Body.String())

	expectationsMet(t, mock)
}

// TestImageUpload uploads a PNG image and downloads it again.
func TestImageUpload(t *testing.T) {
	router := initializeMemoryService(testConfig())

	recorder := runUpload(router, "profileImage", pngImage)
	assert.Equal(t, http.StatusCreated, recorder.Code)
	response := decode(t, recorder)
	assert.True(t, response.Success)
	var id string
	require.NoError(t, json.Unmarshal(response.Data, &id))
	assert.NotEmpty(t, id)

	recorder = runTest(router, "GET", "/api/contact/image/"+id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	assert.Equal(t, pngImage, recorder.Body.Bytes())

	recorder = runTest(router, "GET", "/api/contact/image/unknown", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Equal(t, "Image not found", decode(t, recorder).Message)
}

// TestImageUploadInvalid expects uploads to be rejected that are missing, too large or no image.
func TestImageUploadInvalid(t *testing.T) {
	cfg := testConfig()
	cfg.MaxImageBytes = 16
	router := initializeMemoryService(cfg)

	tests := []struct {
		field   string
		data    []byte
		message string
	}{
		{"avatar", pngImage, `"profileImage" is required`},
		{"profileImage", []byte{}, `"profileImage" is not allowed to be empty`},
		{"profileImage", pngImage, `"profileImage" must not be larger than 16 bytes`},
		{"profileImage", []byte("plain text"), `"profileImage" must be an image`},
	}
	for _, test := range tests {
		recorder := runUpload(router, test.field, test.data)
		assert.Equal(t, http.StatusBadRequest, recorder.Code, test.message)
		assert.Equal(t, test.message, decode(t, recorder).Message)
	}
}

// TestCORS expects the allowed origin on every response and a 204 for preflight requests.
func TestCORS(t *testing.T) {
	router := initializeMemoryService(testConfig())

	recorder := runTest(router, "OPTIONS", "/api/contacts", nil)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))

	recorder = runTest(router, "GET", "/api/contacts", nil)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
}

// TestUnknownRoute expects the error envelope for paths without a handler.
func TestUnknownRoute(t *testing.T) {
	recorder := runTest(initializeMemoryService(testConfig()), "GET", "/contacts", nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.False(t, decode(t, recorder).Success)
}

// TestLifecycle runs create, update, get and delete against the in-memory store.
func TestLifecycle(t *testing.T) {
	router := initializeMemoryService(testConfig())

	recorder := runTest(router, "POST", "/api/contact", strings.NewReader(johnDoeJSON))
	require.Equal(t, http.StatusCreated, recorder.Code)
	created := decodeContact(t, decode(t, recorder))

	recorder = runTest(router, "PUT", "/api/contact/"+created.Id, strings.NewReader(`{}`))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, created, decodeContact(t, decode(t, recorder)))

	recorder = runTest(router, "DELETE", "/api/contact/"+created.Id, nil)
	assert.Equal(t, http.StatusOK, recorder.Code)

	recorder = runTest(router, "GET", "/api/contact/"+created.Id, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
	recorder = runTest(router, "DELETE", "/api/contact/"+created.Id, nil)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
