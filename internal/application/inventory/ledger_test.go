package inventory_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/inventory"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
	"github.com/jhoicas/Almacen-api/internal/domain/repository"
)

// Dos lotes de 10 en L1, vencimientos a 5 y 30 días: un pick de 15 sin lote
// fijo debe producir dos movimientos con la misma referencia, agotando primero
// el que vence antes.
func TestRecord_PickFEFOMultiLote(t *testing.T) {
	h := newHarness(t)
	pronto := h.receive(t, productRice, 10, 5, locL1)
	tarde := h.receive(t, productRice, 10, 30, locL1)

	movs, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type:           entity.MovementPick,
		ProductID:      productRice,
		FromLocationID: locL1,
		Quantity:       qty(15),
		ActorID:        testActor,
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	assert.Equal(t, pronto.ID, movs[0].BatchID)
	assert.True(t, movs[0].Quantity.Equal(qty(10)))
	assert.Equal(t, tarde.ID, movs[1].BatchID)
	assert.True(t, movs[1].Quantity.Equal(qty(5)))

	require.NotEmpty(t, movs[0].ReferenceDocument)
	assert.Equal(t, movs[0].ReferenceDocument, movs[1].ReferenceDocument,
		"los tramos de un pick multi-lote comparten referencia")

	assert.True(t, h.batch(t, pronto.ID).AvailableQuantity.IsZero())
	assert.True(t, h.batch(t, tarde.ID).AvailableQuantity.Equal(qty(5)))
	h.assertConservation(t, pronto.ID)
	h.assertConservation(t, tarde.ID)
}

// Los lotes bloqueados por calidad no participan de la selección FEFO aunque
// venzan antes.
func TestRecord_PickFEFOIgnoraBloqueados(t *testing.T) {
	h := newHarness(t)
	bloqueado := h.receive(t, productRice, 10, 5, locL1)
	libre := h.receive(t, productRice, 10, 30, locL1)
	require.NoError(t, h.registry.SetQualityState(ctxb(), bloqueado.ID, entity.QualityQuarantined))

	movs, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type:           entity.MovementPick,
		ProductID:      productRice,
		FromLocationID: locL1,
		Quantity:       qty(8),
		ActorID:        testActor,
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, libre.ID, movs[0].BatchID)

	// Con el bloqueado fuera solo quedan 2: pedir 5 debe fallar nombrando
	// lo solicitado y lo disponible
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type:           entity.MovementPick,
		ProductID:      productRice,
		FromLocationID: locL1,
		Quantity:       qty(5),
		ActorID:        testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.Contains(t, err.Error(), "5")
	assert.Contains(t, err.Error(), "2")
}

func TestRecord_PickLoteExplicito(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 50, 60, locL1)

	movs, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, Quantity: qty(20), ActorID: testActor,
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(30)))

	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, Quantity: qty(31), ActorID: testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientBatchQuantity))
	assert.Contains(t, err.Error(), "31")
	assert.Contains(t, err.Error(), "30")
}

// El lote debe pertenecer al producto declarado: un pick con el producto
// equivocado se rechaza sin tocar el log, con lote explícito y por FEFO.
func TestRecord_PickProductoNoCoincideConLote(t *testing.T) {
	h := newHarness(t)
	arroz := h.receive(t, productRice, 50, 60, locL1)
	before := len(h.movements(t))

	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productSugar, BatchID: arroz.ID,
		FromLocationID: locL1, Quantity: qty(10), ActorID: testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), productRice)
	assert.Contains(t, err.Error(), productSugar)

	// Por FEFO el lote de otro producto ni siquiera es candidato
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productSugar,
		FromLocationID: locL1, Quantity: qty(10), ActorID: testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))

	assert.True(t, h.batch(t, arroz.ID).AvailableQuantity.Equal(qty(50)))
	assert.Len(t, h.movements(t), before, "el log no debe registrar el movimiento rechazado")
}

// El traslado mueve la asignación sin alterar el disponible del lote.
func TestRecord_Transfer(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 100, 60, locL1)

	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementTransfer, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, ToLocationID: locL2, Quantity: qty(40), ActorID: testActor,
	})
	require.NoError(t, err)

	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(60)))
	assert.True(t, h.allocated(t, locL2, batch.ID).Equal(qty(40)))
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(100)),
		"el traslado no cambia el disponible del lote")
	h.assertConservation(t, batch.ID)
}

// Un traslado que revienta la capacidad destino no deja nada a medias: ni la
// salida del origen ni el movimiento quedan aplicados.
func TestRecord_TransferCapacidadExcedidaRollback(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 100, 60, locL1)
	before := len(h.movements(t))

	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementTransfer, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, ToLocationID: locL4, Quantity: qty(40), ActorID: testActor, // L4 cap 10
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))

	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(100)), "el origen no debe haberse descontado")
	assert.True(t, h.allocated(t, locL4, batch.ID).IsZero())
	assert.Len(t, h.movements(t), before, "no debe quedar movimiento registrado")
	h.assertConservation(t, batch.ID)
}

// Traslados concurrentes hacia la misma ubicación: la validación de capacidad
// corre con la fila de la ubicación bloqueada, así que nunca entra más de lo
// que cabe aunque los traslados toquen asignaciones distintas.
func TestRecord_CapacidadBajoTrasladosConcurrentes(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 100, 60, locL2)

	const intentos = 20 // L4 tiene capacidad 10
	var wg sync.WaitGroup
	results := make(chan error, intentos)
	for i := 0; i < intentos; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
				Type: entity.MovementTransfer, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL2, ToLocationID: locL4, Quantity: qty(1), ActorID: testActor,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok := 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	}
	assert.Equal(t, 10, ok, "solo caben 10 unidades en L4")
	assert.True(t, h.allocated(t, locL4, batch.ID).Equal(qty(10)))
	assert.True(t, h.allocated(t, locL2, batch.ID).Equal(qty(90)))
	h.assertConservation(t, batch.ID)
}

func TestRecord_AjusteEnAmbasDirecciones(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 50, 60, locL1)

	// Ajuste de salida (merma): origen fijado
	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementAdjustment, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, Quantity: qty(5), ActorID: testActor, ReasonCode: "daño",
	})
	require.NoError(t, err)
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(45)))
	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(45)))

	// Ajuste de entrada: destino fijado
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementAdjustment, ProductID: productRice, BatchID: batch.ID,
		ToLocationID: locL1, Quantity: qty(3), ActorID: testActor, ReasonCode: "devolución",
	})
	require.NoError(t, err)
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(48)))
	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(48)))
	h.assertConservation(t, batch.ID)
}

func TestRecord_FormaInvalida(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 50, 60, locL1)

	cases := []struct {
		name  string
		input inventory.RecordInput
		want  error
	}{
		{
			name: "tipo desconocido",
			input: inventory.RecordInput{
				Type: "prestamo", ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, Quantity: qty(1), ActorID: testActor,
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "cantidad cero",
			input: inventory.RecordInput{
				Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, Quantity: qty(0), ActorID: testActor,
			},
			want: domain.ErrInvalidQuantity,
		},
		{
			name: "sin actor",
			input: inventory.RecordInput{
				Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, Quantity: qty(1),
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "traslado con origen igual a destino",
			input: inventory.RecordInput{
				Type: entity.MovementTransfer, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, ToLocationID: locL1, Quantity: qty(1), ActorID: testActor,
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "ajuste con ambas ubicaciones",
			input: inventory.RecordInput{
				Type: entity.MovementAdjustment, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, ToLocationID: locL2, Quantity: qty(1), ActorID: testActor,
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "ajuste sin ubicación",
			input: inventory.RecordInput{
				Type: entity.MovementAdjustment, ProductID: productRice, BatchID: batch.ID,
				Quantity: qty(1), ActorID: testActor,
			},
			want: domain.ErrInvalidInput,
		},
		{
			name: "pick con destino",
			input: inventory.RecordInput{
				Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
				FromLocationID: locL1, ToLocationID: locL2, Quantity: qty(1), ActorID: testActor,
			},
			want: domain.ErrInvalidInput,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.ledger.Record(ctxb(), tc.input)
			assert.True(t, errors.Is(err, tc.want), "esperaba %v, obtuve %v", tc.want, err)
		})
	}
}

// Un lote con disponible global suficiente pero repartido entre ubicaciones no
// puede salir de una ubicación más de lo asignado allí; el intento revierte
// también el descuento del lote.
func TestRecord_NoNegatividadDeAsignacion(t *testing.T) {
	h := newHarness(t)
	batch := h.receive(t, productRice, 50, 60, locL1)
	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementTransfer, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, ToLocationID: locL2, Quantity: qty(40), ActorID: testActor,
	})
	require.NoError(t, err)

	// En L1 quedan 10; el lote tiene 50 disponibles
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice, BatchID: batch.ID,
		FromLocationID: locL1, Quantity: qty(45), ActorID: testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientAllocation))

	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(50)),
		"el descuento del lote debe haberse revertido")
	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(10)))
	h.assertConservation(t, batch.ID)
}

func TestListMovements_FiltroYOrden(t *testing.T) {
	h := newHarness(t)
	b1 := h.receive(t, productRice, 30, 60, locL1)
	h.receive(t, productSugar, 20, 0, locL2)
	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice, BatchID: b1.ID,
		FromLocationID: locL1, Quantity: qty(10), ActorID: testActor,
	})
	require.NoError(t, err)

	all, err := h.ledger.ListMovements(ctxb(), repository.MovementFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.Before(all[i-1].Timestamp), "el log se lista en orden estable")
	}

	rice, err := h.ledger.ListMovements(ctxb(), repository.MovementFilter{ProductID: productRice})
	require.NoError(t, err)
	assert.Len(t, rice, 2)

	byBatch, err := h.ledger.ListMovements(ctxb(), repository.MovementFilter{BatchID: b1.ID})
	require.NoError(t, err)
	assert.Len(t, byBatch, 2)

	paged, err := h.ledger.ListMovements(ctxb(), repository.MovementFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, all[1].ID, paged[0].ID, "offset/limit deben reanudar el mismo orden")
}

// Reproducir el log desde un estado vacío (con la configuración de bodega y
// los cascarones de lote en cero) reconstruye exactamente las cantidades: el
// log es la fuente de verdad.
func TestReplay_ElLogReconstruyeElEstado(t *testing.T) {
	h := newHarness(t)

	b1 := h.receive(t, productRice, 100, 60, locL1)
	b2 := h.receive(t, productRice, 40, 10, locL1)
	_, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice,
		FromLocationID: locL1, Quantity: qty(50), ActorID: testActor,
	})
	require.NoError(t, err)
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementTransfer, ProductID: productRice, BatchID: b1.ID,
		FromLocationID: locL1, ToLocationID: locL2, Quantity: qty(30), ActorID: testActor,
	})
	require.NoError(t, err)
	_, err = h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementAdjustment, ProductID: productRice, BatchID: b1.ID,
		FromLocationID: locL2, Quantity: qty(5), ActorID: testActor, ReasonCode: "daño",
	})
	require.NoError(t, err)

	// Estado final esperado y log completo, antes de vaciar
	finalB1 := h.batch(t, b1.ID)
	finalB2 := h.batch(t, b2.ID)
	finalAllocs := map[string]string{
		locL1 + "|" + b1.ID: h.allocated(t, locL1, b1.ID).String(),
		locL2 + "|" + b1.ID: h.allocated(t, locL2, b1.ID).String(),
		locL1 + "|" + b2.ID: h.allocated(t, locL1, b2.ID).String(),
	}
	log := h.movements(t)
	shells := []*entity.Batch{finalB1, finalB2}

	// Vaciar conservando configuración (ubicaciones y productos) y recrear
	// los cascarones en cero: el movimiento receipt carga las cantidades.
	h.store.Reset()
	err = h.store.Run(ctxb(), func(
		batchRepo repository.BatchRepository,
		_ repository.LocationRepository,
		_ repository.AllocationRepository,
		_ repository.MovementRepository,
		_ repository.CountRepository,
	) error {
		for _, b := range shells {
			shell := *b
			shell.ReceivedQuantity = qty(0)
			shell.AvailableQuantity = qty(0)
			if err := batchRepo.Create(&shell); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	for _, m := range log {
		input := inventory.RecordInput{
			Type:              m.Type,
			ProductID:         m.ProductID,
			BatchID:           m.BatchID,
			Quantity:          m.Quantity,
			ActorID:           m.ActorID,
			ReasonCode:        m.ReasonCode,
			ReferenceDocument: m.ReferenceDocument,
		}
		if m.FromLocationID != nil {
			input.FromLocationID = *m.FromLocationID
		}
		if m.ToLocationID != nil {
			input.ToLocationID = *m.ToLocationID
		}
		_, err := h.ledger.Record(ctxb(), input)
		require.NoError(t, err, "reproducir el movimiento %s (%s) no debe fallar", m.ID, m.Type)
	}

	assert.True(t, h.batch(t, b1.ID).AvailableQuantity.Equal(finalB1.AvailableQuantity))
	assert.True(t, h.batch(t, b1.ID).ReceivedQuantity.Equal(finalB1.ReceivedQuantity))
	assert.True(t, h.batch(t, b2.ID).AvailableQuantity.Equal(finalB2.AvailableQuantity))
	for key, want := range finalAllocs {
		locID, batchID := key[:2], key[3:]
		assert.Equal(t, want, h.allocated(t, locID, batchID).String(),
			"asignación %s debe coincidir tras reproducir el log", key)
	}
}

// Escenario de punta a punta: recepción, pick FEFO y rechazo por capacidad con
// estado intacto.
func TestEscenario_RecepcionPickYCapacidad(t *testing.T) {
	h := newHarness(t)

	batch := h.receive(t, productRice, 100, 10, locL1) // L1 cap 120

	movs, err := h.ledger.Record(ctxb(), inventory.RecordInput{
		Type: entity.MovementPick, ProductID: productRice,
		FromLocationID: locL1, Quantity: qty(30), ActorID: testActor,
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, batch.ID, movs[0].BatchID, "FEFO con un solo candidato elige ese lote")
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(70)))
	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(70)))

	// 70 ocupados + 60 entrantes = 130 > 120: rechazo sin efectos
	_, _, err = h.registry.Receive(ctxb(), inventory.ReceiveInput{
		ProductID:      productRice,
		ManufacturedOn: batch.ManufacturedOn,
		Quantity:       qty(60),
		ToLocationID:   locL1,
		ActorID:        testActor,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCapacityExceeded))
	assert.True(t, h.batch(t, batch.ID).AvailableQuantity.Equal(qty(70)))
	assert.True(t, h.allocated(t, locL1, batch.ID).Equal(qty(70)))
	h.assertConservation(t, batch.ID)
}
