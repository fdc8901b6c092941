package ethereum

// contractABI covers only the functions this client calls.
const contractABI = `[
  {"type":"function","name":"selfRegister","stateMutability":"nonpayable","inputs":[
    {"name":"role","type":"uint8"},{"name":"name","type":"string"}],"outputs":[]},
  {"type":"function","name":"createBatch","stateMutability":"nonpayable","inputs":[
    {"name":"batchId","type":"string"},{"name":"herbName","type":"string"},
    {"name":"herbLatin","type":"string"},{"name":"quantityGrams","type":"uint256"},
    {"name":"latE6","type":"int256"},{"name":"lngE6","type":"int256"},
    {"name":"locationName","type":"string"},{"name":"notes","type":"string"},
    {"name":"photoHash","type":"string"}],"outputs":[]},
  {"type":"function","name":"logEvent","stateMutability":"nonpayable","inputs":[
    {"name":"batchId","type":"string"},{"name":"nodeType","type":"uint8"},
    {"name":"latE6","type":"int256"},{"name":"lngE6","type":"int256"},
    {"name":"locationName","type":"string"},{"name":"notes","type":"string"},
    {"name":"photoHash","type":"string"}],"outputs":[]},
  {"type":"function","name":"getBatch","stateMutability":"view","inputs":[
    {"name":"batchId","type":"string"}],"outputs":[
    {"name":"herbName","type":"string"},{"name":"herbLatin","type":"string"},
    {"name":"quantityGrams","type":"uint256"},{"name":"status","type":"uint8"},
    {"name":"lastNode","type":"uint8"},{"name":"collector","type":"address"},
    {"name":"createdAt","type":"uint256"},{"name":"eventCount","type":"uint256"}]},
  {"type":"function","name":"getStats","stateMutability":"view","inputs":[],"outputs":[
    {"name":"totalBatches","type":"uint256"},{"name":"totalEvents","type":"uint256"}]}
]`
