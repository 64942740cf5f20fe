package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/storage --output domain/storage --outpkg storagemock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name RemoteDataSource --dir ../usecase --output usecase --outpkg usecasemock --filename remote_data_source_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name IntentDispatcher --dir ../usecase --output intent --outpkg intentmock --filename intent_dispatcher_mock.go
