package mocks

import "github.com/stretchr/testify/mock"

type MockMailManager struct {
	mock.Mock
}

func (m *MockMailManager) SendActivationMail(email, name, token string) error {
	args := m.Called(email, name, token)
	return args.Error(0)
}

func (m *MockMailManager) SendConfirmationMail(email, name string) error {
	args := m.Called(email, name)
	return args.Error(0)
}

func (m *MockMailManager) SendContactMail(fromName, fromEmail, subject, message string) error {
	args := m.Called(fromName, fromEmail, subject, message)
	return args.Error(0)
}
